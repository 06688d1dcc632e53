package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	second, err := h.Hash("Passw0rd")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "salt must differ per call")
	assert.True(t, h.Verify("Passw0rd", first))
	assert.True(t, h.Verify("Passw0rd", second))
	assert.False(t, h.Verify("Passw0rd1", first))
	assert.False(t, h.Verify("Passw0rd", "not-a-hash"))
}

func TestPasswordHasherCost(t *testing.T) {
	hash, err := NewPasswordHasher(0).Hash("x")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, defaultBcryptCost, cost)
}
