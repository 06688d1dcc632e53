package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/model"
)

// InsertRefreshToken stores one issued refresh token. A duplicate token string
// fails with a unique violation.
func (db *Postgres) InsertRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, is_revoked, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, uuid.New(), token, userID, expiresAt)
	return err
}

// GetRefreshToken returns the token row joined with its owner.
func (db *Postgres) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `
		SELECT rt.id, rt.token, rt.user_id, rt.expires_at, rt.is_revoked, rt.created_at,
			u.id, u.email, u.username, u.password_hash, u.first_name, u.last_name, u.role,
			u.is_active, u.is_verified, u.last_login_at, u.created_at, u.updated_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = $1
	`
	var (
		rt   model.RefreshToken
		user model.User
	)
	err := db.Pool.QueryRow(ctx, query, token).Scan(
		&rt.ID,
		&rt.Token,
		&rt.UserID,
		&rt.ExpiresAt,
		&rt.IsRevoked,
		&rt.CreatedAt,
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rt.User = &user
	return &rt, nil
}

// RevokeRefreshToken reports whether this call flipped the row. Concurrent
// callers race on the is_revoked filter and only one of them wins.
func (db *Postgres) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE
		WHERE token = $1 AND is_revoked = FALSE
	`
	tag, err := db.Pool.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeUserRefreshToken revokes token only when it belongs to userID.
func (db *Postgres) RevokeUserRefreshToken(ctx context.Context, token string, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE
		WHERE token = $1 AND user_id = $2 AND is_revoked = FALSE
	`
	_, err := db.Pool.Exec(ctx, query, token, userID)
	return err
}

func (db *Postgres) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE
		WHERE user_id = $1 AND is_revoked = FALSE
	`
	_, err := db.Pool.Exec(ctx, query, userID)
	return err
}

func (db *Postgres) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
