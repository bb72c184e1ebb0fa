package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"drama-platform-client/internal/domain"
	"drama-platform-client/pkg/locker"
)

// ErrStoreBusy is returned when another writer holds the session lock.
var ErrStoreBusy = errors.New("session store busy")

// RedisStore keeps the session under a single Redis key so several client
// processes can share one login. Saves are serialized with a distributed lock.
type RedisStore struct {
	client  *redis.Client
	locker  locker.DistributedLocker
	logger  *zap.Logger
	key     string
	lockTTL time.Duration
}

// DefaultLockTTL bounds how long a crashed writer can hold the session lock.
const DefaultLockTTL = 5 * time.Second

// NewRedisStore creates a RedisStore using key for the session payload.
func NewRedisStore(client *redis.Client, l locker.DistributedLocker, logger *zap.Logger, key string, lockTTL time.Duration) *RedisStore {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RedisStore{
		client:  client,
		locker:  l,
		logger:  logger,
		key:     key,
		lockTTL: lockTTL,
	}
}

// Load returns the stored session, or nil when the key is absent.
func (r *RedisStore) Load(ctx context.Context) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("session load failed", zap.String("key", r.key), zap.Error(err))
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}

	return &s, nil
}

// Save stores the session. A known expiry becomes the key TTL.
func (r *RedisStore) Save(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return r.Clear(ctx)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return r.Clear(ctx)
		}
	}

	return r.withLock(ctx, func() error {
		if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		r.logger.Debug("session saved", zap.String("key", r.key), zap.Duration("ttl", ttl))
		return nil
	})
}

// Clear deletes the session key. Deleting a missing key is not an error.
// It does not take the lock: a rejected token must be dropped even while
// another writer holds it, and DEL is idempotent.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	r.logger.Debug("session cleared", zap.String("key", r.key))
	return nil
}

func (r *RedisStore) withLock(ctx context.Context, fn func() error) error {
	lockKey := r.key + ":lock"

	acquired, err := r.locker.Acquire(ctx, lockKey, r.lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrStoreBusy
	}
	defer func() {
		if err := r.locker.Release(ctx, lockKey); err != nil {
			r.logger.Warn("session lock release failed", zap.Error(err))
		}
	}()

	return fn()
}
