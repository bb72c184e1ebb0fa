package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/api/auth"
	"drama-platform-client/internal/api/category"
	"drama-platform-client/internal/api/drama"
	"drama-platform-client/internal/api/search"
	"drama-platform-client/internal/app/service"
	"drama-platform-client/internal/domain"
)

var errUsage = errors.New("invalid usage")

type cli struct {
	auth       *auth.Client
	dramas     *drama.Client
	categories *category.Client
	search     *search.Client
	home       *service.HomeService
	out        io.Writer
}

func newCLI(client *api.Client, limits service.HomeLimits, out io.Writer, logger *zap.Logger) *cli {
	dramas := drama.New(client)
	categories := category.New(client)
	searches := search.New(client)

	return &cli{
		auth:       auth.New(client),
		dramas:     dramas,
		categories: categories,
		search:     searches,
		home:       service.NewHomeService(dramas, categories, searches, limits, logger),
		out:        out,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch name {
	case "login":
		email := fs.String("email", "", "")
		password := fs.String("password", "", "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		res, err := c.auth.Login(ctx, auth.Credentials{Email: *email, Password: passwordOrEnv(*password)})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "signed in as %s\n", res.User.DisplayName())
		return nil

	case "register":
		username := fs.String("username", "", "")
		email := fs.String("email", "", "")
		password := fs.String("password", "", "")
		nickname := fs.String("nickname", "", "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		pw := passwordOrEnv(*password)
		res, err := c.auth.Register(ctx, auth.Registration{
			Username:        *username,
			Email:           *email,
			Password:        pw,
			ConfirmPassword: pw,
			Nickname:        *nickname,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "registered and signed in as %s\n", res.User.DisplayName())
		return nil

	case "logout":
		if err := c.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "signed out")
		return nil

	case "whoami":
		return c.print(c.auth.Profile(ctx))

	case "home":
		return c.print(c.home.Fetch(ctx))

	case "dramas":
		var p drama.ListParams
		fs.IntVar(&p.Page, "page", 0, "")
		fs.IntVar(&p.Limit, "limit", 0, "")
		fs.StringVar(&p.Category, "category", "", "")
		status := fs.String("status", "", "")
		fs.StringVar(&p.Tag, "tag", "", "")
		fs.StringVar(&p.Sort, "sort", "", "")
		fs.StringVar(&p.Order, "order", "", "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		p.Status = domain.DramaStatus(*status)
		return c.print(c.dramas.List(ctx, p))

	case "drama":
		id, err := oneArg(fs, rest)
		if err != nil {
			return err
		}
		return c.print(c.dramas.GetByID(ctx, id))

	case "hot", "new", "trending":
		limit := fs.Int("limit", 8, "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		fetch := map[string]func(context.Context, int) ([]domain.Drama, error){
			"hot":      c.dramas.GetHot,
			"new":      c.dramas.GetNew,
			"trending": c.dramas.GetTrending,
		}[name]
		return c.print(fetch(ctx, *limit))

	case "categories":
		return c.print(c.categories.List(ctx))

	case "category-stats":
		return c.print(c.categories.Stats(ctx))

	case "search":
		var p search.Params
		fs.StringVar(&p.Q, "q", "", "")
		hitType := fs.String("type", "", "")
		fs.StringVar(&p.Category, "category", "", "")
		fs.StringVar(&p.Sort, "sort", "", "")
		fs.IntVar(&p.Page, "page", 0, "")
		fs.IntVar(&p.Limit, "limit", 0, "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		p.Type = domain.HitType(*hitType)
		extra, err := keyValues(fs.Args())
		if err != nil {
			return err
		}
		p.Extra = extra
		return c.print(c.search.Search(ctx, p))

	case "suggest":
		q, err := oneArg(fs, rest)
		if err != nil {
			return err
		}
		return c.print(c.search.Suggestions(ctx, q))

	case "popular":
		limit := fs.Int("limit", 10, "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		return c.print(c.search.Popular(ctx, *limit))

	case "recommend", "similar":
		if len(rest) == 0 {
			return fmt.Errorf("%w: %s needs an argument", errUsage, name)
		}
		arg := rest[0]
		var p search.RecommendationParams
		fs.IntVar(&p.Limit, "limit", 0, "")
		fs.StringVar(&p.Category, "category", "", "")
		if err := fs.Parse(rest[1:]); err != nil {
			return usageError(err)
		}
		if name == "similar" {
			return c.print(c.search.Similar(ctx, arg, p))
		}
		return c.print(c.search.Recommendations(ctx, arg, p))

	case "for-me":
		var p search.RecommendationParams
		fs.IntVar(&p.Limit, "limit", 0, "")
		fs.StringVar(&p.Category, "category", "", "")
		if err := fs.Parse(rest); err != nil {
			return usageError(err)
		}
		return c.print(c.search.Personalized(ctx, p))

	case "rankings":
		if len(rest) == 0 {
			return fmt.Errorf("%w: rankings needs a type", errUsage)
		}
		kind := rest[0]
		var p search.RankingParams
		fs.IntVar(&p.Limit, "limit", 0, "")
		fs.StringVar(&p.Category, "category", "", "")
		fs.StringVar(&p.Period, "period", "", "")
		if err := fs.Parse(rest[1:]); err != nil {
			return usageError(err)
		}
		return c.print(c.search.Ranking(ctx, kind, p))

	case "preferences":
		return c.print(c.search.Preferences(ctx))

	case "prefer":
		if len(rest) != 2 {
			return fmt.Errorf("%w: prefer <dramaId> <action>", errUsage)
		}
		if err := c.search.UpdatePreference(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "recorded %s on %s\n", rest[1], rest[0])
		return nil

	case "check-username", "check-email":
		value, err := oneArg(fs, rest)
		if err != nil {
			return err
		}
		check := c.auth.CheckUsername
		if name == "check-email" {
			check = c.auth.CheckEmail
		}
		available, err := check(ctx, value)
		if err != nil {
			return err
		}
		if available {
			fmt.Fprintf(c.out, "%s is available\n", value)
		} else {
			fmt.Fprintf(c.out, "%s is taken\n", value)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

// print writes v as indented JSON, or returns err.
func (c *cli) print(v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func oneArg(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", usageError(err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s takes exactly one argument", errUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func keyValues(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: filter %q is not key=value", errUsage, a)
		}
		m[k] = v
	}
	return m, nil
}

func passwordOrEnv(p string) string {
	if p != "" {
		return p
	}
	return os.Getenv("DRAMA_PASSWORD")
}

func usageError(err error) error {
	return fmt.Errorf("%w: %v", errUsage, err)
}
