package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type ReviewsHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.list")

	titleID, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "list_reviews_failed", err.Error(), err)
	}

	offset, limit := util.Window(c.QueryParam("limit"), c.QueryParam("offset"))
	total, items, err := h.Svc.List(ctx, titleID, offset, limit)
	if err != nil {
		return fail(l, "list_reviews_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewList(transport.MapList(items, transport.NewReviewResponse), offset, limit, total))
}

func (h *ReviewsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.get")

	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return badRequest(l, "get_review_failed", err.Error(), err)
	}

	rv, err := h.Svc.Get(ctx, titleID, reviewID)
	if err != nil {
		return fail(l, "get_review_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewReviewResponse(rv))
}

func (h *ReviewsHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.create")

	titleID, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "create_review_failed", err.Error(), err)
	}

	var req transport.ReviewCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_review_failed", "invalid body", err)
	}

	rv, err := h.Svc.Submit(ctx, actorFrom(c), titleID, req)
	if err != nil {
		return fail(l, "create_review_failed", err)
	}

	l.Info("create_review_success", "review_id", rv.ID)
	return c.JSON(http.StatusCreated, transport.NewReviewResponse(rv))
}

func (h *ReviewsHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.patch")

	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return badRequest(l, "patch_review_failed", err.Error(), err)
	}

	var req transport.ReviewPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_review_failed", "invalid body", err)
	}

	rv, err := h.Svc.Update(ctx, actorFrom(c), titleID, reviewID, req)
	if err != nil {
		return fail(l, "patch_review_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewReviewResponse(rv))
}

func (h *ReviewsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.delete")

	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return badRequest(l, "delete_review_failed", err.Error(), err)
	}

	if err := h.Svc.Delete(ctx, actorFrom(c), titleID, reviewID); err != nil {
		return fail(l, "delete_review_failed", err)
	}

	l.Info("delete_review_success", "review_id", reviewID)
	return c.NoContent(http.StatusNoContent)
}

func (h *ReviewsHTTP) Rating(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.rating")

	titleID, err := paramID(c, "title_id")
	if err != nil {
		return badRequest(l, "rating_failed", err.Error(), err)
	}

	rating, err := h.Svc.ComputeRating(ctx, titleID)
	if err != nil {
		return fail(l, "rating_failed", err)
	}
	return c.JSON(http.StatusOK, transport.RatingResponse{TitleID: titleID, Rating: rating})
}

func reviewPath(c echo.Context) (titleID, reviewID uint, err error) {
	if titleID, err = paramID(c, "title_id"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = paramID(c, "review_id"); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}
