package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTries      = 8
	defaultRetryDelay = 25 * time.Millisecond
)

// RedisLocker implements DistributedLocker on top of redsync.
type RedisLocker struct {
	rs         *redsync.Redsync
	logger     *zap.Logger
	tries      int
	retryDelay time.Duration
	mutexes    map[string]*redsync.Mutex
	mu         sync.Mutex
}

// Option configures a RedisLocker.
type Option func(*RedisLocker)

// WithTries sets how many acquisition attempts are made before giving up.
// One attempt makes Acquire non-blocking.
func WithTries(n int) Option {
	return func(r *RedisLocker) {
		if n > 0 {
			r.tries = n
		}
	}
}

// WithRetryDelay sets the pause between acquisition attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(r *RedisLocker) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// NewRedisLocker creates a redsync-backed locker sharing client's connection pool.
func NewRedisLocker(client *redis.Client, logger *zap.Logger, opts ...Option) *RedisLocker {
	r := &RedisLocker{
		rs:         redsync.New(goredis.NewPool(client)),
		logger:     logger,
		tries:      defaultTries,
		retryDelay: defaultRetryDelay,
		mutexes:    make(map[string]*redsync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire attempts to take the lock, retrying up to the configured tries.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(r.tries),
		redsync.WithRetryDelay(r.retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("acquire lock %s: %w", key, ctxErr)
		}
		// redsync reports contention either as ErrFailed or as a wrapped
		// "lock already taken" error depending on node state.
		if errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken") {
			r.logger.Debug("lock held elsewhere", zap.String("key", key))
			return false, nil
		}
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired", zap.String("key", key), zap.Duration("ttl", ttl))

	return true, nil
}

// Release unlocks key if this instance holds it.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if !released {
		r.logger.Debug("lock already expired", zap.String("key", key))
	}

	return nil
}
