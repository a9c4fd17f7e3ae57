package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
)

func TestUpdateMe_IgnoresRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice", policy.RoleUser)

	u, err := e.Users.UpdateMe(ctx, alice, transport.UserPatchRequest{Bio: strp("reader"), Role: strp("admin")})
	require.NoError(t, err)
	assert.Equal(t, "reader", u.Bio)
	assert.Equal(t, "user", u.Role)

	_, err = e.Users.Me(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserAdministration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "root", policy.RoleAdmin)
	alice := e.user(t, "alice", policy.RoleUser)
	su := &policy.Actor{UserID: alice.UserID + 100, Username: "su", Role: policy.RoleUser, Superuser: true}

	_, _, err := e.Users.List(ctx, alice, "", 0, 10)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = e.Users.List(ctx, nil, "", 0, 10)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	total, _, err := e.Users.List(ctx, su, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	bob, err := e.Users.Create(ctx, admin, transport.UserCreateRequest{Username: "bob", Email: "bob@example.com", Role: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, "moderator", bob.Role)

	_, err = e.Users.Create(ctx, admin, transport.UserCreateRequest{Username: "bob", Email: "bob2@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = e.Users.Create(ctx, admin, transport.UserCreateRequest{Username: "carol", Email: "carol@example.com", Role: "god"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fieldsOf(t, err), "role")

	promoted, err := e.Users.SetRole(ctx, admin, "alice", policy.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, "moderator", promoted.Role)

	_, err = e.Users.SetRole(ctx, alice, "alice", policy.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.Users.Update(ctx, admin, "bob", transport.UserPatchRequest{Email: strp("alice@example.com")})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	require.NoError(t, e.Users.Delete(ctx, admin, "bob"))
	_, err = e.Users.Get(ctx, admin, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.Users.Delete(ctx, admin, "bob"), ErrNotFound)
}
