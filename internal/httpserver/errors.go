package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
)

// fail logs err under event and converts it to the matching HTTP error.
// Validation errors carry their field map as the response body.
func fail(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, ve.Fields)
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid token", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid token")
	case errors.Is(err, service.ErrUnauthenticated):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "unauthenticated")
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", http.StatusForbidden, "reason", "forbidden")
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDelivery):
		l.Error(event, "status", http.StatusBadGateway, "reason", "delivery", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot deliver confirmation code")
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "internal", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
