package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredTokenDeleter interface {
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

// TokenReaper periodically deletes refresh token rows past their expiry.
type TokenReaper struct {
	store    expiredTokenDeleter
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewTokenReaper(store expiredTokenDeleter, interval time.Duration, log *zap.Logger) *TokenReaper {
	return &TokenReaper{store: store, interval: interval, log: log, now: time.Now}
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (r *TokenReaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("refresh token reaper disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = r.Sweep(ctx)
		}
	}
}

func (r *TokenReaper) Sweep(ctx context.Context) (int64, error) {
	deleted, err := r.store.DeleteExpiredRefreshTokens(ctx, r.now())
	if err != nil {
		r.log.Error("failed to delete expired refresh tokens", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		r.log.Info("expired refresh tokens deleted", zap.Int64("count", deleted))
	}
	return deleted, nil
}
