package auth

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
)

const (
	DefaultMaxLoginAttempts   = 3
	DefaultLoginAttemptWindow = 30 * time.Minute

	throttleShards = 32
)

type throttleShard struct {
	mu      sync.Mutex
	records map[string]*models.LoginAttemptRecord
	locks   map[string]*identifierLock
}

// identifierLock is a one-slot semaphore shared by every login waiting on
// the same identifier. It is removed from its shard when refs drops to zero.
type identifierLock struct {
	slot chan struct{}
	refs int
}

// MemoryLoginThrottle counts failed logins per identifier in process memory.
// Records expire lazily: a record older than the window is treated as absent
// the next time its identifier is read or written. State is local to this
// process and lost on restart.
type MemoryLoginThrottle struct {
	shards      [throttleShards]*throttleShard
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewMemoryLoginThrottle creates a throttle using the wall clock
func NewMemoryLoginThrottle(maxAttempts int, window time.Duration) *MemoryLoginThrottle {
	return NewMemoryLoginThrottleWithClock(maxAttempts, window, time.Now)
}

// NewMemoryLoginThrottleWithClock creates a throttle reading time from now
func NewMemoryLoginThrottleWithClock(maxAttempts int, window time.Duration, now func() time.Time) *MemoryLoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLoginAttemptWindow
	}
	t := &MemoryLoginThrottle{
		maxAttempts: maxAttempts,
		window:      window,
		now:         now,
	}
	for i := range t.shards {
		t.shards[i] = &throttleShard{
			records: make(map[string]*models.LoginAttemptRecord),
			locks:   make(map[string]*identifierLock),
		}
	}
	return t
}

func (t *MemoryLoginThrottle) shard(identifier string) *throttleShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return t.shards[h.Sum32()%throttleShards]
}

// MaxAttempts returns the number of failures allowed inside one window
func (t *MemoryLoginThrottle) MaxAttempts() int {
	return t.maxAttempts
}

// Lock serialises logins for one identifier. The caller must call the
// returned release func exactly once. Waiting stops when ctx is done.
func (t *MemoryLoginThrottle) Lock(ctx context.Context, identifier string) (func(), error) {
	s := t.shard(identifier)

	s.mu.Lock()
	l, ok := s.locks[identifier]
	if !ok {
		l = &identifierLock{slot: make(chan struct{}, 1)}
		s.locks[identifier] = l
	}
	l.refs++
	s.mu.Unlock()

	drop := func() {
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, identifier)
		}
		s.mu.Unlock()
	}

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		drop()
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.slot
			drop()
		})
	}, nil
}

// RecordFailedAttempt registers a failure and returns the attempts left.
// The result goes negative once the limit is passed.
func (t *MemoryLoginThrottle) RecordFailedAttempt(_ context.Context, identifier string) (int, error) {
	now := t.now()
	s := t.shard(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok || rec.Expired(now, t.window) {
		s.records[identifier] = &models.LoginAttemptRecord{Count: 1, LastAttempt: now}
		return t.maxAttempts - 1, nil
	}

	rec.Count++
	rec.LastAttempt = now
	return t.maxAttempts - rec.Count, nil
}

// HasExceededAttempts reports whether a live record has reached the limit
func (t *MemoryLoginThrottle) HasExceededAttempts(_ context.Context, identifier string) (bool, error) {
	now := t.now()
	s := t.shard(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok || rec.Expired(now, t.window) {
		return false, nil
	}
	return rec.Count >= t.maxAttempts, nil
}

// ResetAttempts deletes the record. Unknown identifiers are a no-op.
func (t *MemoryLoginThrottle) ResetAttempts(_ context.Context, identifier string) error {
	s := t.shard(identifier)

	s.mu.Lock()
	delete(s.records, identifier)
	s.mu.Unlock()
	return nil
}

// PruneExpired drops records whose window has elapsed and returns how many
// were removed. It does not change what the other methods report.
func (t *MemoryLoginThrottle) PruneExpired(_ context.Context) (int64, error) {
	now := t.now()
	var removed int64

	for _, s := range t.shards {
		s.mu.Lock()
		for id, rec := range s.records {
			if rec.Expired(now, t.window) {
				delete(s.records, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed, nil
}

// Len returns the number of records currently held, expired or not
func (t *MemoryLoginThrottle) Len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.records)
		s.mu.Unlock()
	}
	return n
}
