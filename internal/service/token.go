package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/model"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Signer signs and verifies token claims. Swapping the implementation changes
// the signing scheme without touching the issuer.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
	Parse(token string, claims jwt.Claims) error
}

type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (s *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *HMACSigner) Parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

type tokenClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Type  TokenType  `json:"type"`
	jwt.RegisteredClaims
}

// TokenPayload is the verified content of a token.
type TokenPayload struct {
	ID        string
	UserID    uuid.UUID
	Email     string
	Role      model.Role
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenIssuer struct {
	accessSigner  Signer
	refreshSigner Signer
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenIssuer(accessSigner, refreshSigner Signer, accessTTL, refreshTTL time.Duration, issuer string) *TokenIssuer {
	if refreshSigner == nil {
		refreshSigner = accessSigner
	}
	return &TokenIssuer{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		now:           time.Now,
	}
}

// Issue signs an access/refresh pair for user. RefreshExpiresAt is the single
// source for both the refresh token's exp claim and its stored row.
func (i *TokenIssuer) Issue(user *model.User) (*TokenPair, error) {
	// exp claims carry whole seconds
	now := i.now().Truncate(time.Second)

	accessExp := now.Add(i.accessTTL)
	access, err := i.accessSigner.Sign(i.claims(user, TokenTypeAccess, now, accessExp))
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(i.refreshTTL)
	refresh, err := i.refreshSigner.Sign(i.claims(user, TokenTypeRefresh, now, refreshExp))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks signature and expiry. It returns ErrExpiredToken or
// ErrInvalidToken on failure.
func (i *TokenIssuer) Verify(tokenStr string) (*TokenPayload, error) {
	claims := &tokenClaims{}
	err := i.accessSigner.Parse(tokenStr, claims)
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) && i.refreshSigner != i.accessSigner {
		claims = &tokenClaims{}
		err = i.refreshSigner.Parse(tokenStr, claims)
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	payload := &TokenPayload{
		ID:     claims.ID,
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
		Type:   claims.Type,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}

func (i *TokenIssuer) claims(user *model.User, typ TokenType, now, exp time.Time) tokenClaims {
	return tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}
