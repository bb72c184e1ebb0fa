// Package locker provides distributed locking for writers that share state
// across client processes.
package locker

import (
	"context"
	"time"
)

// DistributedLocker provides distributed lock capabilities across processes.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	acquired, err := l.Acquire(ctx, "session:lock", 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    return ErrBusy
//	}
//	defer l.Release(ctx, "session:lock")
type DistributedLocker interface {
	// Acquire tries to take the lock identified by key.
	// Returns false (and no error) if another holder kept it for every attempt.
	// The lock expires after ttl if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock if this instance holds it; otherwise it is a no-op.
	Release(ctx context.Context, key string) error
}
