package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	calls atomic.Int32
	err   error
}

func (p *countingPruner) PruneExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_PrunesOnEachTick(t *testing.T) {
	pruner := &countingPruner{}
	cm := NewCleanupManager(pruner, discardLogger(), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return pruner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cm.Stop()
	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	cm := NewCleanupManager(&countingPruner{err: errors.New("store down")}, discardLogger(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager ignored cancellation")
	}
}

func TestCleanupManager_PrunesMemoryThrottle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	throttle := auth.NewMemoryLoginThrottleWithClock(3, 30*time.Minute, func() time.Time { return now })
	ctx := context.Background()

	_, err := throttle.RecordFailedAttempt(ctx, "old@example.com")
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = throttle.RecordFailedAttempt(ctx, "fresh@example.com")
	require.NoError(t, err)

	cm := NewCleanupManager(throttle, discardLogger(), time.Hour)
	cm.runCleanup(ctx)

	removed, err := throttle.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed, "expired record should already be gone")

	exceeded, err := throttle.HasExceededAttempts(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)
}
