package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/apperr"
	"github.com/kube-rca/userauth/internal/db"
	"github.com/kube-rca/userauth/internal/model"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserPage struct {
	Users []*model.SafeUser
	Page  int
	Limit int
	Total int
}

// UserService holds the admin-side user operations.
type UserService struct {
	users  UserRepo
	tokens RefreshTokenStore
	log    *zap.Logger
}

func NewUserService(users UserRepo, tokens RefreshTokenStore, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

func (s *UserService) List(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	users, total, err := s.users.ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	safe := make([]*model.SafeUser, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Safe())
	}
	return &UserPage{Users: safe, Page: page, Limit: limit, Total: total}, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.SafeUser, error) {
	user, err := s.users.GetUserByID(ctx, id)
	return safeOrNotFound(user, err)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*model.SafeUser, error) {
	user, err := s.users.UpdateProfile(ctx, id, firstName, lastName)
	return safeOrNotFound(user, err)
}

func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.SafeUser, error) {
	if !role.Valid() {
		return nil, apperr.Validation("Invalid role", apperr.FieldError{Field: "role", Message: "must be one of USER, ADMIN, SUPER_ADMIN"})
	}
	user, err := s.users.UpdateRole(ctx, id, role)
	if err == nil {
		s.log.Info("user role changed", zap.String("user_id", id.String()), zap.String("role", string(role)))
	}
	return safeOrNotFound(user, err)
}

// SetActive toggles the account gate. Deactivation also revokes every refresh
// token; outstanding access tokens stop working because the auth middleware
// re-reads the user on each request.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.SafeUser, error) {
	user, err := s.users.SetActive(ctx, id, active)
	if err != nil {
		return safeOrNotFound(nil, err)
	}
	if !active {
		if err := s.tokens.RevokeAllRefreshTokens(ctx, id); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	s.log.Info("user status changed", zap.String("user_id", id.String()), zap.Bool("active", active))
	return user.Safe(), nil
}

// Delete removes the user permanently; refresh tokens cascade.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if db.IsNoRows(err) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}
	s.log.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func safeOrNotFound(user *model.User, err error) (*model.SafeUser, error) {
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return user.Safe(), nil
}
