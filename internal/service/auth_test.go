package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/pkg/tokens"
)

func TestSignupExchange_CodeIsSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user", u.Role)
	require.Len(t, e.Mailer.sent, 1)
	assert.Equal(t, "alice@example.com", e.Mailer.sent[0].to)

	code := e.Mailer.lastCode(t)
	assert.Len(t, code, 32)

	var stored models.ConfirmationCode
	require.NoError(t, e.DB.Where("user_id = ?", u.ID).First(&stored).Error)
	assert.NotEqual(t, code, stored.CodeHash)

	pair, err := e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: code})
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(pair.Access, e.Auth.Cfg.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: code})
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Contains(t, e.Events.types(), "user_signed_up")
	assert.Contains(t, e.Events.types(), "user_confirmed")
}

func TestSignup_ReissueInvalidatesPreviousCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	req := transport.SignupRequest{Username: "alice", Email: "alice@example.com"}

	first, err := e.Auth.Signup(ctx, req)
	require.NoError(t, err)
	code1 := e.Mailer.lastCode(t)

	second, err := e.Auth.Signup(ctx, req)
	require.NoError(t, err)
	code2 := e.Mailer.lastCode(t)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, code1, code2)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: code1})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: code2})
	assert.NoError(t, err)
}

func TestSignup_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		field    string
	}{
		{name: "reserved me with valid email", username: "me", email: "me@example.com", field: "username"},
		{name: "reserved me with bad email", username: "me", email: "not-an-email", field: "username"},
		{name: "bad characters", username: "al ice", email: "alice@example.com", field: "username"},
		{name: "empty username", username: "", email: "alice@example.com", field: "username"},
		{name: "bad email", username: "alice", email: "alice-at-example", field: "email"},
		{name: "display name email", username: "alice", email: "Alice <alice@example.com>", field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: tt.username, Email: tt.email})
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
	assert.Empty(t, e.Mailer.sent)
}

func TestSignup_DuplicateIdentity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = e.Auth.Signup(ctx, transport.SignupRequest{Username: "alice", Email: "other@example.com"})
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Contains(t, fieldsOf(t, err), "username")

	_, err = e.Auth.Signup(ctx, transport.SignupRequest{Username: "bob", Email: "ALICE@example.com"})
	require.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Contains(t, fieldsOf(t, err), "email")
}

func TestSignup_DeliveryFailureSurfaces(t *testing.T) {
	e := newEnv(t)
	e.Mailer.err = errors.New("smtp down")

	_, err := e.Auth.Signup(context.Background(), transport.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.ErrorIs(t, err, ErrDelivery)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestExchange_Failures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.Auth.Exchange(ctx, transport.TokenRequest{Username: "ghost", ConfirmationCode: "00000000000000000000000000000000"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice"})
	assert.ErrorIs(t, err, ErrValidation)

	u, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	code := e.Mailer.lastCode(t)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: "ffffffffffffffffffffffffffffffff"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, e.DB.Model(&models.ConfirmationCode{}).
		Where("user_id = ?", u.ID).
		Update("expires_at", time.Now().Add(-time.Minute).UTC()).Error)

	_, err = e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: code})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExchange_NoPendingCode(t *testing.T) {
	e := newEnv(t)
	e.user(t, "alice", "user")

	_, err := e.Auth.Exchange(context.Background(), transport.TokenRequest{Username: "alice", ConfirmationCode: "00000000000000000000000000000000"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_CarriesCurrentRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	pair, err := e.Auth.Exchange(ctx, transport.TokenRequest{Username: "alice", ConfirmationCode: e.Mailer.lastCode(t)})
	require.NoError(t, err)

	require.NoError(t, e.DB.Model(u).Update("role", "moderator").Error)

	fresh, err := e.Auth.Refresh(ctx, transport.RefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	claims, err := tokens.AccessClaimsFromToken(fresh.Access, e.Auth.Cfg.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "moderator", claims.Role)

	_, err = e.Auth.Refresh(ctx, transport.RefreshRequest{Refresh: pair.Access})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.Auth.Refresh(ctx, transport.RefreshRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}
