package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/apperr"
	"github.com/kube-rca/userauth/internal/config"
	"github.com/kube-rca/userauth/internal/db"
	"github.com/kube-rca/userauth/internal/events"
	"github.com/kube-rca/userauth/internal/model"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = apperr.Authentication("Invalid email or password")
	ErrAccountDisabled    = apperr.Authentication("Account is disabled")
	ErrTokenRevoked       = apperr.Authentication("Token has been revoked")
	ErrTokenExpired       = apperr.Authentication("Token has expired")
	ErrInvalidRefresh     = apperr.Authentication("Invalid refresh token")
	ErrInvalidTokenType   = apperr.Authentication("Invalid token type")
	ErrNoToken            = apperr.Authentication("No token provided")
	ErrBadAccessToken     = apperr.Authentication("Invalid token")
	ErrAccessExpired      = apperr.Authentication("Token expired")
	ErrInactiveUser       = apperr.Authentication("User not found or inactive")
	ErrEmailTaken         = apperr.Conflict("Email already registered")
	ErrUsernameTaken      = apperr.Conflict("Username already taken")
	ErrUserExists         = apperr.Conflict("User already exists")
	ErrUserNotFound       = apperr.NotFound("User not found")
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, int, error)
}

// RefreshTokenStore is the only writer of refresh token rows.
type RefreshTokenStore interface {
	InsertRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) (bool, error)
	RevokeUserRefreshToken(ctx context.Context, token string, userID uuid.UUID) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

type AuthResult struct {
	User   *model.SafeUser
	Tokens *TokenPair
}

type AuthService struct {
	users     UserRepo
	tokens    RefreshTokenStore
	hasher    *PasswordHasher
	issuer    *TokenIssuer
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time

	// dummyHash is compared against on unknown emails so both login
	// failures cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(users UserRepo, tokens RefreshTokenStore, cfg config.AuthConfig, publisher events.Publisher, log *zap.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth config invalid: JWT_SECRET is required")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	accessSigner := NewHMACSigner(cfg.JWTSecret)
	var refreshSigner Signer = accessSigner
	if cfg.RefreshSecret() != cfg.JWTSecret {
		refreshSigner = NewHMACSigner(cfg.RefreshSecret())
	}

	hasher := NewPasswordHasher(cfg.BcryptCost)
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		dummyHash: dummyHash,
		issuer:    NewTokenIssuer(accessSigner, refreshSigner, cfg.AccessTTL(), cfg.RefreshTTL(), cfg.JWTIssuer),
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}, nil
}

// EnsureAdmin creates a SUPER_ADMIN account when the email is not registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	email = model.NormalizeEmail(email)
	username = model.NormalizeUsername(username)
	if email == "" || username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("auth config invalid: ADMIN_EMAIL/ADMIN_USERNAME/ADMIN_PASSWORD are required")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	_, err = s.users.CreateUser(ctx, &model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		IsVerified:   true,
	})
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// Register creates a user and a first session. Email uniqueness is checked
// before username, so a request clashing on both reports the email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := model.NormalizeEmail(in.Email)
	username := model.NormalizeUsername(in.Username)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	exists, err = s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user, err := s.users.CreateUser(ctx, &model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, apperr.Internal(err)
	}

	// The user row is committed at this point; a failure below leaves an
	// account without a session and the client has to log in.
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		s.log.Error("token issuance failed after registration", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.UserRegistered, user)
	return &AuthResult{User: user.Safe(), Tokens: tokens}, nil
}

// Login never reveals whether the email exists: unknown email and wrong
// password share ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user, err = s.users.UpdateLastLogin(ctx, user.ID, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserLoggedIn, user)
	return &AuthResult{User: user.Safe(), Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Revoke and insert are separate statements; if the second
// fails the client must authenticate again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := s.issuer.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidRefresh
	}
	if payload.Type != TokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}

	record, err := s.tokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrTokenRevoked
		}
		return nil, apperr.Internal(err)
	}
	if record.IsRevoked {
		return nil, ErrTokenRevoked
	}
	if !s.now().Before(record.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	revoked, err := s.tokens.RevokeRefreshToken(ctx, record.Token)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !revoked {
		// another request rotated this token first
		return nil, ErrTokenRevoked
	}

	user := record.User
	if user == nil {
		user, err = s.users.GetUserByID(ctx, record.UserID)
		if err != nil {
			if db.IsNoRows(err) {
				return nil, ErrTokenRevoked
			}
			return nil, apperr.Internal(err)
		}
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes one session when refreshToken is set, otherwise all of the
// user's sessions. Revoking nothing is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken *string) error {
	var err error
	if refreshToken != nil {
		err = s.tokens.RevokeUserRefreshToken(ctx, *refreshToken, userID)
	} else {
		err = s.tokens.RevokeAllRefreshTokens(ctx, userID)
	}
	if err != nil {
		return apperr.Internal(err)
	}

	s.publish(ctx, events.UserLoggedOut, &model.User{ID: userID})
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.SafeUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return user.Safe(), nil
}

// Authenticate verifies an access token and re-reads the user so that
// deactivated or deleted accounts lose access before their tokens expire.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	if accessToken == "" {
		return nil, ErrNoToken
	}

	payload, err := s.issuer.Verify(accessToken)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, ErrAccessExpired
		}
		return nil, ErrBadAccessToken
	}
	if payload.Type != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}

	user, err := s.users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInactiveUser
		}
		return nil, apperr.Internal(err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return &model.AuthUser{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.tokens.InsertRefreshToken(ctx, tokens.RefreshToken, user.ID, tokens.RefreshExpiresAt); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Internal(fmt.Errorf("refresh token collision: %w", err))
		}
		return nil, apperr.Internal(err)
	}
	return tokens, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *model.User) {
	event := events.Event{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish auth event", zap.String("type", eventType), zap.Error(err))
	}
}
