package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signup_failed", "invalid body", err)
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		return fail(l, "signup_failed", err)
	}

	return c.JSON(http.StatusOK, transport.SignupResponse{Username: user.Username, Email: user.Email})
}

// Token exchanges a confirmation code. An unknown username and a bad code
// produce the same response.
func (h *AuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.token")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "token_failed", "invalid body", err)
	}

	pair, err := h.Svc.Exchange(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			err = service.ErrInvalidToken
		}
		return fail(l, "token_failed", err)
	}

	l.Info("token_success")
	return c.JSON(http.StatusOK, transport.TokenResponse{Refresh: pair.Refresh, Access: pair.Access})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh_failed", "invalid body", err)
	}

	pair, err := h.Svc.Refresh(ctx, req)
	if err != nil {
		return fail(l, "refresh_failed", err)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{Refresh: pair.Refresh, Access: pair.Access})
}
