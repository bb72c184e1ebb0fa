// Package job provides background jobs.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"drama-platform-client/internal/domain"
)

// SessionExpirer tears the session down the same way a 401 does.
type SessionExpirer interface {
	ExpireSession(ctx context.Context)
}

// SessionReaper periodically checks the stored session against its expiry
// and tears it down once it has lapsed. It never refreshes a token.
type SessionReaper struct {
	store    domain.SessionStore
	expirer  SessionExpirer
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ReaperConfig holds session reaper configuration.
type ReaperConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// NewSessionReaper creates a new SessionReaper.
func NewSessionReaper(
	store domain.SessionStore,
	expirer SessionExpirer,
	cfg ReaperConfig,
	logger *zap.Logger,
) *SessionReaper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &SessionReaper{
		store:    store,
		expirer:  expirer,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// Start begins the background check.
func (r *SessionReaper) Start(runOnStartup bool) {
	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.logger.Info("starting session reaper",
		zap.Duration("interval", r.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	r.wg.Add(1)
	go r.run(runOnStartup)
}

// Stop gracefully stops the reaper.
func (r *SessionReaper) Stop() {
	r.logger.Info("stopping session reaper")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("session reaper stopped")
}

func (r *SessionReaper) run(runOnStartup bool) {
	defer r.wg.Done()

	if runOnStartup {
		r.tick()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *SessionReaper) tick() {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	if _, err := r.Reap(ctx); err != nil {
		r.logger.Warn("session check failed", zap.Error(err))
	}
}

// Reap tears the session down if it has expired and reports whether it did.
// A session without a known expiry is left alone.
func (r *SessionReaper) Reap(ctx context.Context) (bool, error) {
	s, err := r.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if s == nil || !s.Expired(r.now()) {
		return false, nil
	}

	r.logger.Info("stored session expired",
		zap.Time("expires_at", s.ExpiresAt),
	)
	r.expirer.ExpireSession(ctx)

	return true, nil
}
