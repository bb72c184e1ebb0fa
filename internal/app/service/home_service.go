package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"drama-platform-client/internal/domain"
)

// DramaFeeds is the part of the catalog contract the home page reads.
type DramaFeeds interface {
	GetHot(ctx context.Context, limit int) ([]domain.Drama, error)
	GetNew(ctx context.Context, limit int) ([]domain.Drama, error)
	GetTrending(ctx context.Context, limit int) ([]domain.Drama, error)
}

// CategoryLister lists categories.
type CategoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// PopularSearches returns the most searched keywords.
type PopularSearches interface {
	Popular(ctx context.Context, limit int) ([]domain.PopularSearch, error)
}

// HomeLimits caps each collection of the home feed.
type HomeLimits struct {
	Hot      int
	New      int
	Trending int
	Popular  int
}

// DefaultHomeLimits matches the home page layout.
var DefaultHomeLimits = HomeLimits{Hot: 8, New: 8, Trending: 8, Popular: 10}

// HomeFeed is everything the home page renders.
type HomeFeed struct {
	Hot        []domain.Drama         `json:"hot"`
	New        []domain.Drama         `json:"new"`
	Trending   []domain.Drama         `json:"trending"`
	Categories []domain.Category      `json:"categories"`
	Popular    []domain.PopularSearch `json:"popular"`
}

// HomeService fetches the home feed as one batch.
type HomeService struct {
	dramas     DramaFeeds
	categories CategoryLister
	searches   PopularSearches
	limits     HomeLimits
	logger     *zap.Logger
}

// NewHomeService creates a new HomeService.
func NewHomeService(dramas DramaFeeds, categories CategoryLister, searches PopularSearches, limits HomeLimits, logger *zap.Logger) *HomeService {
	return &HomeService{
		dramas:     dramas,
		categories: categories,
		searches:   searches,
		limits:     limits,
		logger:     logger,
	}
}

// Fetch issues the five reads concurrently and waits for all of them.
// If any read fails the whole batch fails and no collection is returned.
// In-flight reads are not cancelled when a sibling fails.
func (s *HomeService) Fetch(ctx context.Context) (*HomeFeed, error) {
	start := time.Now()

	var (
		g    errgroup.Group
		feed HomeFeed
	)

	g.Go(func() (err error) {
		feed.Hot, err = s.dramas.GetHot(ctx, s.limits.Hot)
		return err
	})
	g.Go(func() (err error) {
		feed.New, err = s.dramas.GetNew(ctx, s.limits.New)
		return err
	})
	g.Go(func() (err error) {
		feed.Trending, err = s.dramas.GetTrending(ctx, s.limits.Trending)
		return err
	})
	g.Go(func() (err error) {
		feed.Categories, err = s.categories.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		feed.Popular, err = s.searches.Popular(ctx, s.limits.Popular)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("home feed fetch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("fetching home feed: %w", err)
	}

	s.logger.Debug("home feed fetched",
		zap.Int("hot", len(feed.Hot)),
		zap.Int("new", len(feed.New)),
		zap.Int("trending", len(feed.Trending)),
		zap.Int("categories", len(feed.Categories)),
		zap.Int("popular", len(feed.Popular)),
		zap.Duration("duration", time.Since(start)),
	)

	return &feed, nil
}
