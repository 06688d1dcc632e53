// Package memstore is an in-memory implementation of the user and refresh
// token stores with the same unique constraints and cascade behaviour as the
// Postgres schema. It backs service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kube-rca/userauth/internal/model"
)

type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]model.User
	tokens map[string]model.RefreshToken

	// InsertTokenErr, when set, fails every refresh token insert.
	InsertTokenErr error
}

func New() *Store {
	return &Store{
		users:  map[uuid.UUID]model.User{},
		tokens: map[string]model.RefreshToken{},
	}
}

var ErrUnique = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, ErrUnique
		}
	}
	u := *user
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) update(id uuid.UUID, fn func(u *model.User)) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) (*model.User, error) {
	return s.update(id, func(u *model.User) { u.LastLoginAt = &at })
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*model.User, error) {
	return s.update(id, func(u *model.User) {
		if firstName != nil {
			u.FirstName = firstName
		}
		if lastName != nil {
			u.LastName = lastName
		}
	})
}

func (s *Store) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	return s.update(id, func(u *model.User) { u.Role = role })
}

func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	return s.update(id, func(u *model.User) { u.IsActive = active })
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.users, id)
	for token, rt := range s.tokens {
		if rt.UserID == id {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := len(all)
	if offset >= total {
		return []*model.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Store) InsertRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertTokenErr != nil {
		return s.InsertTokenErr
	}
	if _, ok := s.tokens[token]; ok {
		return ErrUnique
	}
	s.tokens[token] = model.RefreshToken{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u := s.users[rt.UserID]
	rt.User = &u
	return &rt, nil
}

// revokeWhere flips matching live tokens and reports how many changed.
func (s *Store) revokeWhere(match func(rt model.RefreshToken) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, rt := range s.tokens {
		if !rt.IsRevoked && match(rt) {
			rt.IsRevoked = true
			s.tokens[token] = rt
			n++
		}
	}
	return n
}

func (s *Store) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	n := s.revokeWhere(func(rt model.RefreshToken) bool { return rt.Token == token })
	return n == 1, nil
}

func (s *Store) RevokeUserRefreshToken(ctx context.Context, token string, userID uuid.UUID) error {
	s.revokeWhere(func(rt model.RefreshToken) bool { return rt.Token == token && rt.UserID == userID })
	return nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	s.revokeWhere(func(rt model.RefreshToken) bool { return rt.UserID == userID })
	return nil
}

func (s *Store) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, rt := range s.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(s.tokens, token)
			n++
		}
	}
	return n, nil
}

// Token returns the stored row for t, or the zero value.
func (s *Store) Token(t string) model.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[t]
}

func (s *Store) SetTokenExpiry(t string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.tokens[t]
	rt.ExpiresAt = at
	s.tokens[t] = rt
}
