package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/apperr"
	"github.com/kube-rca/userauth/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_List(t *testing.T) {
	auth, store := newTestAuthService(t)
	users := NewUserService(store, store, zap.NewNop())
	register(t, auth, "a@x.com", "alice")
	register(t, auth, "b@x.com", "bob")
	register(t, auth, "c@x.com", "carol")

	page, err := users.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "c@x.com", page.Users[0].Email)

	page, err = users.List(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageSize, page.Limit)
	assert.Len(t, page.Users, 3)
}

func TestUserService_Mutations(t *testing.T) {
	auth, store := newTestAuthService(t)
	users := NewUserService(store, store, zap.NewNop())
	ctx := context.Background()
	reg := register(t, auth, "a@x.com", "alice")

	first := "Alice"
	updated, err := users.UpdateProfile(ctx, reg.User.ID, &first, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)

	updated, err = users.UpdateRole(ctx, reg.User.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = users.UpdateRole(ctx, reg.User.ID, model.Role("ROOT"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	got, err := users.Get(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
}

func TestUserService_DeactivateRevokesSessions(t *testing.T) {
	auth, store := newTestAuthService(t)
	users := NewUserService(store, store, zap.NewNop())
	ctx := context.Background()
	reg := register(t, auth, "a@x.com", "alice")

	updated, err := users.SetActive(ctx, reg.User.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = auth.Authenticate(ctx, reg.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInactiveUser)

	_, err = auth.Refresh(ctx, reg.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = users.SetActive(ctx, reg.User.ID, true)
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, reg.Tokens.AccessToken)
	assert.NoError(t, err)
}

func TestUserService_NotFound(t *testing.T) {
	_, store := newTestAuthService(t)
	users := NewUserService(store, store, zap.NewNop())
	ctx := context.Background()
	missing := uuid.New()

	_, err := users.Get(ctx, missing)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = users.UpdateRole(ctx, missing, model.RoleUser)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = users.SetActive(ctx, missing, false)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, users.Delete(ctx, missing), ErrUserNotFound)
}

func TestUserService_DeleteCascades(t *testing.T) {
	auth, store := newTestAuthService(t)
	users := NewUserService(store, store, zap.NewNop())
	ctx := context.Background()
	reg := register(t, auth, "a@x.com", "alice")

	require.NoError(t, users.Delete(ctx, reg.User.ID))

	_, err := store.GetRefreshToken(ctx, reg.Tokens.RefreshToken)
	assert.Error(t, err)
}
