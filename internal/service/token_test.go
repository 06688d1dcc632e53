package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "a@x.com", Username: "alice", Role: model.RoleAdmin, IsActive: true}
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	signer := NewHMACSigner("secret")
	issuer := NewTokenIssuer(signer, nil, 15*time.Minute, 7*24*time.Hour, "test")
	user := testUser()

	pair, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, access.UserID)
	assert.Equal(t, user.Email, access.Email)
	assert.Equal(t, model.RoleAdmin, access.Role)
	assert.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := issuer.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)
	assert.WithinDuration(t, pair.RefreshExpiresAt, refresh.ExpiresAt, time.Second)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestTokenIssuer_UniqueWithinSameSecond(t *testing.T) {
	issuer := NewTokenIssuer(NewHMACSigner("secret"), nil, time.Minute, time.Hour, "test")
	fixed := time.Now()
	issuer.now = func() time.Time { return fixed }
	user := testUser()

	a, err := issuer.Issue(user)
	require.NoError(t, err)
	b, err := issuer.Issue(user)
	require.NoError(t, err)

	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(NewHMACSigner("secret"), nil, time.Minute, time.Minute, "test")
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenIssuer_Invalid(t *testing.T) {
	issuer := NewTokenIssuer(NewHMACSigner("secret"), nil, time.Minute, time.Hour, "test")
	other := NewTokenIssuer(NewHMACSigner("other-secret"), nil, time.Minute, time.Hour, "test")

	pair, err := other.Issue(testUser())
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": pair.AccessToken,
		"garbage":      "not.a.jwt",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer(NewHMACSigner("secret"), nil, time.Minute, time.Hour, "test")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_DistinctRefreshSecret(t *testing.T) {
	issuer := NewTokenIssuer(NewHMACSigner("access"), NewHMACSigner("refresh"), time.Minute, time.Hour, "test")

	pair, err := issuer.Issue(testUser())
	require.NoError(t, err)

	refresh, err := issuer.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)

	accessOnly := NewTokenIssuer(NewHMACSigner("access"), nil, time.Minute, time.Hour, "test")
	_, err = accessOnly.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
