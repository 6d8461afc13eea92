package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	loginAttemptKeyPrefix = "training-tracker||login-attempts||"
	loginLockKeyPrefix    = "training-tracker||login-lock||"

	// loginLockTTL bounds how long a crashed holder can block an identifier
	loginLockTTL       = 10 * time.Second
	loginLockRetryWait = 25 * time.Millisecond
)

// releaseLoginLock deletes the lock only while it still holds our token, so a
// holder whose lock expired cannot release the next holder's lock.
var releaseLoginLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLoginThrottle keeps the failed-login counters in Redis so that every
// instance behind a load balancer sees the same counts. Each failure refreshes
// the key's TTL to the window, so a key expires one window after the last
// failure.
type RedisLoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	newToken    func() string
}

// NewRedisLoginThrottle creates a Redis backed throttle
func NewRedisLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *RedisLoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLoginAttemptWindow
	}
	return &RedisLoginThrottle{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		newToken:    uuid.NewString,
	}
}

func loginAttemptKey(identifier string) string {
	return loginAttemptKeyPrefix + identifier
}

func loginLockKey(identifier string) string {
	return loginLockKeyPrefix + identifier
}

// MaxAttempts returns the number of failures allowed inside one window
func (t *RedisLoginThrottle) MaxAttempts() int {
	return t.maxAttempts
}

// Lock serialises logins for one identifier across instances. It polls
// SETNX until the lock is free or ctx is done. The lock expires on its own
// after loginLockTTL.
func (t *RedisLoginThrottle) Lock(ctx context.Context, identifier string) (func(), error) {
	key := loginLockKey(identifier)
	token := t.newToken()

	for {
		ok, err := t.client.SetNX(ctx, key, token, loginLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire login lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(loginLockRetryWait):
		}
	}

	return func() {
		// Detached from ctx so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseLoginLock.Run(releaseCtx, t.client, []string{key}, token).Err()
	}, nil
}

// RecordFailedAttempt increments the counter and returns the attempts left.
// INCR and PEXPIRE go out in one MULTI/EXEC so a counter never outlives its
// window without a TTL.
func (t *RedisLoginThrottle) RecordFailedAttempt(ctx context.Context, identifier string) (int, error) {
	key := loginAttemptKey(identifier)

	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record login attempt: %w", err)
	}

	return t.maxAttempts - int(incr.Val()), nil
}

// HasExceededAttempts reports whether the identifier reached the limit
func (t *RedisLoginThrottle) HasExceededAttempts(ctx context.Context, identifier string) (bool, error) {
	count, err := t.client.Get(ctx, loginAttemptKey(identifier)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts: %w", err)
	}
	return count >= t.maxAttempts, nil
}

// ResetAttempts deletes the counter
func (t *RedisLoginThrottle) ResetAttempts(ctx context.Context, identifier string) error {
	if err := t.client.Del(ctx, loginAttemptKey(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
