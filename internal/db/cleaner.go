package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PendingPruner removes unverified accounts whose verification code expired
// before cutoff and reports how many were removed.
type PendingPruner interface {
	DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartPendingCleaner periodically deletes abandoned signups: unverified
// users whose code expired more than retention ago. It returns immediately;
// the loop stops when ctx is cancelled.
func StartPendingCleaner(
	ctx context.Context,
	store PendingPruner,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				removed, err := store.DeleteExpiredPending(ctx, cutoff)
				if err != nil {
					log.Error("failed to prune pending accounts", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("pruned pending accounts", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
