package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/observability/metrics"
)

// TokenSweeper periodically clears expired password reset tokens so that
// stale tokens never linger in the users table.
type TokenSweeper struct {
	users    domain.UserRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewTokenSweeper creates a new token sweeper.
func NewTokenSweeper(users domain.UserRepository, logger *slog.Logger, interval time.Duration) *TokenSweeper {
	return &TokenSweeper{
		users:    users,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sweeper loop. It runs until ctx is cancelled.
func (w *TokenSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("token sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("token sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TokenSweeper) sweep(ctx context.Context) {
	cleared, err := w.users.ClearExpiredResetTokens(ctx, time.Now())
	if err != nil {
		w.logger.Error("failed to clear expired reset tokens",
			slog.String("error", err.Error()),
		)
		return
	}
	if cleared > 0 {
		w.logger.Info("cleared expired reset tokens", slog.Int64("count", cleared))
		metrics.ObserveTokensSwept(cleared)
	}
}
