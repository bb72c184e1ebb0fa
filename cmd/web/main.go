// Package main is the entry point for the drama web companion server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/api/auth"
	"drama-platform-client/internal/api/category"
	"drama-platform-client/internal/api/drama"
	"drama-platform-client/internal/api/search"
	"drama-platform-client/internal/app/bootstrap"
	"drama-platform-client/internal/app/service"
	"drama-platform-client/internal/config"
	"drama-platform-client/internal/job"
	"drama-platform-client/internal/transport/httpserver"
	"drama-platform-client/internal/transport/httpserver/dto"
	"drama-platform-client/internal/transport/httpserver/handler"
	"drama-platform-client/internal/transport/httpserver/middleware"
	"drama-platform-client/internal/validator"
)

func main() {
	// Load .env files, then configuration
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting drama-web",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("backend", cfg.API.BaseURL),
	)

	// Open session store
	ctx := context.Background()
	store, err := bootstrap.NewSessionStore(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal("failed to open session store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Shared backend client
	client := bootstrap.NewAPIClient(cfg, store, log.Logger,
		api.WithSessionExpiredHook(func(context.Context) {
			log.Info("session expired, login required", zap.String("redirect", dto.LoginPath))
		}),
	)

	// Domain modules
	dramas := drama.New(client)
	searches := search.New(client)
	homeSvc := service.NewHomeService(
		dramas,
		category.New(client),
		searches,
		service.HomeLimits{
			Hot:      cfg.Home.HotLimit,
			New:      cfg.Home.NewLimit,
			Trending: cfg.Home.TrendingLimit,
			Popular:  cfg.Home.PopularLimit,
		},
		log.Logger,
	)

	// Optional read caches in front of the backend
	var home handler.HomeFetcher = homeSvc
	if cfg.Cache.HomeTTL > 0 {
		home = service.NewHomeCache(homeSvc, cfg.Cache.HomeTTL, log.Logger)
	}
	var searcher handler.Searcher = searches
	if cfg.Cache.SearchTTL > 0 {
		cached, err := service.NewSearchCache(searches, cfg.Cache.SearchSize, cfg.Cache.SearchTTL, log.Logger)
		if err != nil {
			log.Fatal("failed to create search cache", zap.Error(err))
		}
		searcher = cached
	}

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
			Origins:   cfg.App.CORSOrigins,
		},
		httpserver.Dependencies{
			Home:   home,
			Dramas: dramas,
			Search: searcher,
			Auth:   auth.New(client),
			Readiness: []middleware.ReadinessCheck{
				func(ctx context.Context) error {
					_, err := store.Load(ctx)
					return err
				},
			},
		},
		validator.New(),
		log.Named("http").Logger,
	)

	// Expire lapsed sessions without waiting for a 401
	var reaper *job.SessionReaper
	if cfg.Session.ReapInterval > 0 {
		reaper = job.NewSessionReaper(store, client, job.ReaperConfig{Interval: cfg.Session.ReapInterval}, log.Named("reaper").Logger)
		reaper.Start(true)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if reaper != nil {
			reaper.Stop()
		}

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
