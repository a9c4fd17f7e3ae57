package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotbarbarossa/yamdb-final/pkg/tokens"
)

var testSecret = []byte("test-access-secret")

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, *tokens.AccessClaims, bool) {
	t.Helper()

	e := echo.New()
	var (
		got    *tokens.AccessClaims
		called bool
	)
	e.GET("/", func(c echo.Context) error {
		called = true
		got = ClaimsFrom(c)
		return c.NoContent(http.StatusOK)
	}, Authenticate(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, got, called
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	rec, claims, called := serve(t, "")
	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, claims)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tok, _, err := tokens.SignAccessToken(7, "alice", "moderator", false, testSecret, time.Minute)
	require.NoError(t, err)

	rec, claims, called := serve(t, "Bearer "+tok)
	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "moderator", claims.Role)
}

func TestAuthenticate_Rejects(t *testing.T) {
	expired, _, err := tokens.SignAccessToken(7, "alice", "user", false, testSecret, -time.Minute)
	require.NoError(t, err)
	refresh, _, err := tokens.SignRefreshToken(7, testSecret, time.Minute)
	require.NoError(t, err)
	foreign, _, err := tokens.SignAccessToken(7, "alice", "user", false, []byte("other"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "expired", header: "Bearer " + expired},
		{name: "refresh used as access", header: "Bearer " + refresh},
		{name: "foreign secret", header: "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := serve(t, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
