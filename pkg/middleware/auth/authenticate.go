package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
	"github.com/kotbarbarossa/yamdb-final/pkg/tokens"
)

const claimsKey = "auth.claims"

// Authenticate reads an optional bearer access token. Requests without an
// Authorization header pass through anonymously; a present but invalid token
// is rejected with 401.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			l := logging.FromContext(c.Request().Context()).With("middleware", "authenticate")

			raw, ok := bearer(header)
			if !ok {
				l.Warn("authenticate_failed", "status", 401, "reason", "malformed authorization header")
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil {
				reason := "invalid access token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					reason = "access token expired"
				}
				l.Warn("authenticate_failed", "status", 401, "reason", reason, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, reason)
			}
			if _, err := claims.UserID(); err != nil {
				l.Warn("authenticate_failed", "status", 401, "reason", "invalid subject", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Authenticate, or nil for anonymous
// requests.
func ClaimsFrom(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)

	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("user_id", claims.Subject)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
}
