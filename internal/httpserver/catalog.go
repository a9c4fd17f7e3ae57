package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.list")

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.ListCategories(ctx, c.QueryParam("search"), offset, limit)
	if err != nil {
		return fail(l, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, offset, limit, total))
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.create")

	var req transport.SluggedRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_failed", "invalid body", err)
	}

	cat, err := h.Svc.CreateCategory(ctx, actorFrom(c), req)
	if err != nil {
		return fail(l, "create_category_failed", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.delete")

	if err := h.Svc.DeleteCategory(ctx, actorFrom(c), c.Param("slug")); err != nil {
		return fail(l, "delete_category_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListGenres(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "genres.list")

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.ListGenres(ctx, c.QueryParam("search"), offset, limit)
	if err != nil {
		return fail(l, "list_genres_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(items, offset, limit, total))
}

func (h *CatalogHTTP) CreateGenre(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "genres.create")

	var req transport.SluggedRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_genre_failed", "invalid body", err)
	}

	g, err := h.Svc.CreateGenre(ctx, actorFrom(c), req)
	if err != nil {
		return fail(l, "create_genre_failed", err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *CatalogHTTP) DeleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "genres.delete")

	if err := h.Svc.DeleteGenre(ctx, actorFrom(c), c.Param("slug")); err != nil {
		return fail(l, "delete_genre_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
