package service

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"drama-platform-client/internal/api/search"
	"drama-platform-client/internal/domain"
)

const homeCacheKey = "home"

// HomeFetcher fetches the home feed as one batch.
type HomeFetcher interface {
	Fetch(ctx context.Context) (*HomeFeed, error)
}

// HomeCache serves a recently fetched home feed instead of refetching it.
// Only complete feeds are cached; a failed batch is never remembered.
// Concurrent misses share one backend batch.
type HomeCache struct {
	next   HomeFetcher
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewHomeCache wraps next with a cache holding one feed for ttl.
func NewHomeCache(next HomeFetcher, ttl time.Duration, logger *zap.Logger) *HomeCache {
	return &HomeCache{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Fetch returns the cached feed or fetches a fresh one.
func (c *HomeCache) Fetch(ctx context.Context) (*HomeFeed, error) {
	if v, ok := c.cache.Get(homeCacheKey); ok {
		return v.(*HomeFeed), nil
	}

	// The batch is shared by every waiter, so it must outlive the caller that started it.
	shared := context.WithoutCancel(ctx)
	v, err, joined := c.group.Do(homeCacheKey, func() (any, error) {
		feed, err := c.next.Fetch(shared)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(homeCacheKey, feed)
		return feed, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("home feed cached", zap.Bool("shared", joined))
	return v.(*HomeFeed), nil
}

// Invalidate drops the cached feed.
func (c *HomeCache) Invalidate() {
	c.cache.Delete(homeCacheKey)
}

// SearchBackend is the part of the search contract whose results are shared by all users.
type SearchBackend interface {
	Search(ctx context.Context, p search.Params) (*domain.SearchResult, error)
	Ranking(ctx context.Context, kind string, p search.RankingParams) (*domain.RankingResult, error)
}

type cachedEntry struct {
	value     any
	expiresAt time.Time
}

// SearchCache keeps the most recent search and ranking results in a bounded LRU.
type SearchCache struct {
	next    SearchBackend
	entries *lru.Cache[string, cachedEntry]
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSearchCache wraps next with an LRU of size entries, each valid for ttl.
func NewSearchCache(next SearchBackend, size int, ttl time.Duration, logger *zap.Logger) (*SearchCache, error) {
	entries, err := lru.New[string, cachedEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating search cache: %w", err)
	}

	return &SearchCache{
		next:    next,
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}, nil
}

// Search returns a cached result for identical parameters, or runs the search.
func (c *SearchCache) Search(ctx context.Context, p search.Params) (*domain.SearchResult, error) {
	key := "search?" + p.Values().Encode()
	if v, ok := c.get(key); ok {
		return v.(*domain.SearchResult), nil
	}

	res, err := c.next.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	c.set(key, res)
	return res, nil
}

// Ranking returns a cached ranking for identical parameters, or fetches it.
func (c *SearchCache) Ranking(ctx context.Context, kind string, p search.RankingParams) (*domain.RankingResult, error) {
	key := "ranking/" + kind + "?" + p.Values().Encode()
	if v, ok := c.get(key); ok {
		return v.(*domain.RankingResult), nil
	}

	res, err := c.next.Ranking(ctx, kind, p)
	if err != nil {
		return nil, err
	}

	c.set(key, res)
	return res, nil
}

// Len returns the number of cached entries, expired ones included.
func (c *SearchCache) Len() int {
	return c.entries.Len()
}

func (c *SearchCache) get(key string) (any, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}

	c.logger.Debug("search cache hit", zap.String("key", key))
	return e.value, true
}

func (c *SearchCache) set(key string, v any) {
	c.entries.Add(key, cachedEntry{value: v, expiresAt: c.now().Add(c.ttl)})
}
