package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type CommentsHTTP struct {
	Svc *service.CommentService
}

func commentPath(c echo.Context) (titleID, reviewID, commentID uint, err error) {
	if titleID, reviewID, err = reviewPath(c); err != nil {
		return 0, 0, 0, err
	}
	if commentID, err = paramID(c, "comment_id"); err != nil {
		return 0, 0, 0, err
	}
	return titleID, reviewID, commentID, nil
}

func (h *CommentsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.list")

	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return badRequest(l, "list_comments_failed", err.Error(), err)
	}

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.List(ctx, titleID, reviewID, offset, limit)
	if err != nil {
		return fail(l, "list_comments_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(transport.MapList(items, transport.NewCommentResponse), offset, limit, total))
}

func (h *CommentsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.get")

	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return badRequest(l, "get_comment_failed", err.Error(), err)
	}

	cm, err := h.Svc.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return fail(l, "get_comment_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewCommentResponse(cm))
}

func (h *CommentsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.create")

	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return badRequest(l, "create_comment_failed", err.Error(), err)
	}

	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_comment_failed", "invalid body", err)
	}

	cm, err := h.Svc.Create(ctx, actorFrom(c), titleID, reviewID, req)
	if err != nil {
		return fail(l, "create_comment_failed", err)
	}
	return c.JSON(http.StatusCreated, transport.NewCommentResponse(cm))
}

func (h *CommentsHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.patch")

	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return badRequest(l, "patch_comment_failed", err.Error(), err)
	}

	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_comment_failed", "invalid body", err)
	}

	cm, err := h.Svc.Update(ctx, actorFrom(c), titleID, reviewID, commentID, req)
	if err != nil {
		return fail(l, "patch_comment_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewCommentResponse(cm))
}

func (h *CommentsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comments.delete")

	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return badRequest(l, "delete_comment_failed", err.Error(), err)
	}

	if err := h.Svc.Delete(ctx, actorFrom(c), titleID, reviewID, commentID); err != nil {
		return fail(l, "delete_comment_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
