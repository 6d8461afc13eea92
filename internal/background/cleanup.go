package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner drops expired entries from a store and reports how many it removed
type Pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically prunes expired login-attempt records so that
// identifiers which never retry do not accumulate in memory
type CleanupManager struct {
	pruner   Pruner
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(pruner Pruner, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		pruner:   pruner,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task. It blocks until Stop is called or
// ctx is cancelled.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup removes expired login-attempt records
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := cm.pruner.PruneExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to prune login attempts", slog.Any("error", err))
		return
	}

	if removed > 0 {
		cm.logger.Info("login attempt cleanup completed", slog.Int64("records_removed", removed))
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
