// Package main is dramactl, a command-line client for the drama backend.
// The session is kept between runs in the configured session store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/app/bootstrap"
	"drama-platform-client/internal/app/service"
	"drama-platform-client/internal/config"
)

const usage = `usage: dramactl [-config file] [-v] <command> [args]

commands:
  login -email E [-password P]   sign in (password falls back to $DRAMA_PASSWORD)
  register -username U -email E [-password P] [-nickname N]
  logout                         sign out and forget the session
  whoami                         show the signed-in profile
  home                           hot, new, trending, categories and popular searches
  dramas [-page N] [-limit N] [-category C] [-status S] [-sort F] [-order asc|desc]
  drama <id>                     show one drama
  hot|new|trending [-limit N]    ranked drama lists
  categories                     list categories
  category-stats                 category aggregates
  search -q Q [-type T] [-page N] [-limit N] [k=v ...]
  suggest <q>                    search suggestions
  popular [-limit N]             popular searches
  recommend <type> [-limit N]    recommendations (popular, trending, new, collaborative, content)
  for-me [-limit N]              personalized recommendations
  similar <dramaId> [-limit N]   similar dramas
  rankings <type> [-period P] [-limit N]
  preferences                    show preference payload
  prefer <dramaId> <action>      record an action (like, favorite, view, share)
  check-username <name>
  check-email <email>
`

func main() {
	fs := flag.NewFlagSet("dramactl", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "dramactl:", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dramactl:", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays machine-readable.
	cfg.Logger.Output = "stderr"
	cfg.Logger.Format = "console"
	if !*verbose {
		cfg.Logger.Level = "warn"
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dramactl:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.NewSessionStore(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal("failed to open session store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	client := bootstrap.NewAPIClient(cfg, store, log.Logger,
		api.WithSessionExpiredHook(func(context.Context) {
			fmt.Fprintln(os.Stderr, "session expired, run: dramactl login")
		}),
	)

	limits := service.HomeLimits{
		Hot:      cfg.Home.HotLimit,
		New:      cfg.Home.NewLimit,
		Trending: cfg.Home.TrendingLimit,
		Popular:  cfg.Home.PopularLimit,
	}

	if err := newCLI(client, limits, os.Stdout, log.Logger).run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "dramactl:", describe(err))
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// describe prefers the backend's own message when there is one.
func describe(err error) string {
	if apiErr, ok := api.AsError(err); ok && apiErr.Message != "" {
		if apiErr.StatusCode > 0 {
			return fmt.Sprintf("%s (%d %s)", apiErr.Message, apiErr.StatusCode, apiErr.Kind)
		}
		return apiErr.Message
	}
	return err.Error()
}
