package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeUserOmitsPasswordHash(t *testing.T) {
	user := &User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "$2a$12$secret",
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	raw, err := json.Marshal(user.Safe())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$12$secret")

	raw, err = json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$12$secret")
}

func TestNormalize(t *testing.T) {
	req := RegisterRequest{Email: "  A@X.com ", Username: " Alice_1 "}
	req.Normalize()
	assert.Equal(t, "a@x.com", req.Email)
	assert.Equal(t, "alice_1", req.Username)

	blank := "   "
	logout := LogoutRequest{RefreshToken: &blank}
	logout.Normalize()
	assert.Nil(t, logout.RefreshToken)

	role := UpdateRoleRequest{Role: " admin "}
	role.Normalize()
	assert.Equal(t, RoleAdmin, role.Role)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("ROOT").Valid())
}
