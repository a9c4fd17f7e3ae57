package httpserver

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	middleware "github.com/kotbarbarossa/yamdb-final/pkg/middleware/auth"
)

var errBadID = errors.New("id must be a positive integer")

func paramID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, errBadID
	}
	return uint(v), nil
}

// actorFrom builds the caller from the verified access token, nil when
// anonymous.
func actorFrom(c echo.Context) *policy.Actor {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &policy.Actor{
		UserID:    id,
		Username:  claims.Username,
		Role:      policy.Role(claims.Role),
		Superuser: claims.Superuser,
	}
}
