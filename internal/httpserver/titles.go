package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type TitlesHTTP struct {
	Svc *service.TitleService
}

func (h *TitlesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "titles.list")

	f := repo.TitleFilter{
		Genre:    c.QueryParam("genre"),
		Category: c.QueryParam("category"),
		Name:     c.QueryParam("name"),
	}
	if y := c.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return badRequest(l, "list_titles_failed", "year must be an integer", err)
		}
		f.Year = &year
	}

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.List(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "list_titles_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, offset, limit, total))
}

func (h *TitlesHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "titles.get")

	id, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "get_title_failed", err.Error(), err)
	}

	t, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_title_failed", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TitlesHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "titles.create")

	var req transport.TitleCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_title_failed", "invalid body", err)
	}

	t, err := h.Svc.Create(ctx, actorFrom(c), req)
	if err != nil {
		return fail(l, "create_title_failed", err)
	}

	l.Info("create_title_success", "title_id", t.ID)
	return c.JSON(http.StatusCreated, t)
}

func (h *TitlesHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "titles.patch")

	id, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "patch_title_failed", err.Error(), err)
	}

	var req transport.TitlePatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_title_failed", "invalid body", err)
	}

	t, err := h.Svc.Update(ctx, actorFrom(c), id, req)
	if err != nil {
		return fail(l, "patch_title_failed", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TitlesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "titles.delete")

	id, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "delete_title_failed", err.Error(), err)
	}

	if err := h.Svc.Delete(ctx, actorFrom(c), id); err != nil {
		return fail(l, "delete_title_failed", err)
	}

	l.Info("delete_title_success", "title_id", id)
	return c.NoContent(http.StatusNoContent)
}
