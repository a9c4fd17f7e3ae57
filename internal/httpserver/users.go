package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.List(ctx, actorFrom(c), c.QueryParam("search"), offset, limit)
	if err != nil {
		return fail(l, "list_users_failed", err)
	}

	return c.JSON(http.StatusOK, transport.NewList(items, offset, limit, total))
}

func (h *UsersHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.create")

	var req transport.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user_failed", "invalid body", err)
	}

	u, err := h.Svc.Create(ctx, actorFrom(c), req)
	if err != nil {
		return fail(l, "create_user_failed", err)
	}

	l.Info("create_user_success", "username", u.Username)
	return c.JSON(http.StatusCreated, u)
}

func (h *UsersHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	u, err := h.Svc.Get(ctx, actorFrom(c), c.Param("username"))
	if err != nil {
		return fail(l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.patch")

	var req transport.UserPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_user_failed", "invalid body", err)
	}

	u, err := h.Svc.Update(ctx, actorFrom(c), c.Param("username"), req)
	if err != nil {
		return fail(l, "patch_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete")

	if err := h.Svc.Delete(ctx, actorFrom(c), c.Param("username")); err != nil {
		return fail(l, "delete_user_failed", err)
	}

	l.Info("delete_user_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.me")

	u, err := h.Svc.Me(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "get_me_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) PatchMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.patch_me")

	var req transport.UserPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_me_failed", "invalid body", err)
	}

	u, err := h.Svc.UpdateMe(ctx, actorFrom(c), req)
	if err != nil {
		return fail(l, "patch_me_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}
