// Package bootstrap builds the shared runtime pieces from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/config"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/logger"
	"drama-platform-client/internal/session"
	"drama-platform-client/pkg/locker"
)

// NewLogger builds the application logger from configuration.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
}

// SessionStore is the configured store plus whatever must be closed with it.
type SessionStore struct {
	domain.SessionStore
	Close func() error
}

// NewSessionStore opens the store selected by session.driver.
func NewSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*SessionStore, error) {
	noop := func() error { return nil }

	switch cfg.Session.Driver {
	case config.SessionDriverMemory:
		return &SessionStore{SessionStore: session.NewMemoryStore(), Close: noop}, nil

	case config.SessionDriverFile:
		log.Info("using file session store", zap.String("path", cfg.Session.FilePath))
		return &SessionStore{SessionStore: session.NewFileStore(cfg.Session.FilePath, log), Close: noop}, nil

	case config.SessionDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("connected to Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)

		store := session.NewRedisStore(
			client,
			locker.NewRedisLocker(client, log),
			log,
			cfg.Session.Key,
			cfg.Session.LockTTL,
		)
		return &SessionStore{SessionStore: store, Close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}

// NewAPIClient builds the process-wide backend client.
func NewAPIClient(cfg *config.Config, store domain.SessionStore, log *zap.Logger, opts ...api.Option) *api.Client {
	return api.New(
		api.Config{
			BaseURL:   cfg.API.BaseURL,
			Timeout:   cfg.API.Timeout,
			UserAgent: cfg.API.UserAgent,
			CB: api.CBConfig{
				Enabled:      cfg.API.CB.Enabled,
				MaxRequests:  cfg.API.CB.MaxRequests,
				Interval:     cfg.API.CB.Interval,
				Timeout:      cfg.API.CB.Timeout,
				FailureRatio: cfg.API.CB.FailureRatio,
			},
		},
		store,
		log,
		opts...,
	)
}
