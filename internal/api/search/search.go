// Package search is the search, recommendation and ranking contract.
// Scores, orderings and rankings are computed by the backend; this package
// only carries them.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
)

// Client calls the /search endpoints.
type Client struct {
	api *api.Client
}

// New creates a search client on the shared transport.
func New(c *api.Client) *Client {
	return &Client{api: c}
}

// Search runs a free-text search.
func (c *Client) Search(ctx context.Context, p Params) (*domain.SearchResult, error) {
	if err := c.api.Validate(&p); err != nil {
		return nil, err
	}

	res, err := api.Get[domain.SearchResult](ctx, c.api, "/search", p.Values())
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", p.Q, err)
	}

	if !res.Pagination.Consistent(res.Total) {
		c.api.Logger().Warn("search pagination inconsistent with total",
			zap.Int64("total", res.Total),
			zap.Int("limit", res.Pagination.Limit),
			zap.Int("pages", res.Pagination.Pages),
		)
	}

	return &res, nil
}

// Suggestions returns completions for a partial query, in backend order.
func (c *Client) Suggestions(ctx context.Context, q string) ([]string, error) {
	if q == "" {
		return nil, api.NewValidationError("q is required", nil)
	}

	suggestions, err := api.Get[[]string](ctx, c.api, "/search/suggestions", url.Values{"q": {q}})
	if err != nil {
		return nil, fmt.Errorf("fetching suggestions: %w", err)
	}
	return suggestions, nil
}

// Popular returns the most searched keywords. Trend is passed through as sent.
func (c *Client) Popular(ctx context.Context, limit int) ([]domain.PopularSearch, error) {
	q, err := c.api.LimitQuery(limit)
	if err != nil {
		return nil, err
	}

	popular, err := api.Get[[]domain.PopularSearch](ctx, c.api, "/search/popular", q)
	if err != nil {
		return nil, fmt.Errorf("fetching popular searches: %w", err)
	}

	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}

	return popular, nil
}

// Recommendations returns recommendations of the given type.
func (c *Client) Recommendations(ctx context.Context, kind string, p RecommendationParams) (*domain.RecommendationResult, error) {
	seg, err := api.PathSegment("type", kind)
	if err != nil {
		return nil, err
	}
	return c.recommend(ctx, "/search/recommendations/"+seg, p)
}

// Personalized returns recommendations for the signed-in user.
func (c *Client) Personalized(ctx context.Context, p RecommendationParams) (*domain.RecommendationResult, error) {
	return c.recommend(ctx, "/search/recommendations/personalized/me", p)
}

// Similar returns dramas similar to dramaID.
func (c *Client) Similar(ctx context.Context, dramaID string, p RecommendationParams) (*domain.RecommendationResult, error) {
	seg, err := api.PathSegment("dramaId", dramaID)
	if err != nil {
		return nil, err
	}
	return c.recommend(ctx, "/search/recommendations/similar/"+seg, p)
}

func (c *Client) recommend(ctx context.Context, path string, p RecommendationParams) (*domain.RecommendationResult, error) {
	if err := c.api.Validate(&p); err != nil {
		return nil, err
	}

	res, err := api.Get[domain.RecommendationResult](ctx, c.api, path, p.Values())
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	return &res, nil
}

// Ranking returns the ranking of the given type.
func (c *Client) Ranking(ctx context.Context, kind string, p RankingParams) (*domain.RankingResult, error) {
	seg, err := api.PathSegment("type", kind)
	if err != nil {
		return nil, err
	}
	if err := c.api.Validate(&p); err != nil {
		return nil, err
	}

	res, err := api.Get[domain.RankingResult](ctx, c.api, "/search/rankings/"+seg, p.Values())
	if err != nil {
		return nil, fmt.Errorf("fetching %s ranking: %w", kind, err)
	}

	if err := res.Validate(); err != nil {
		c.api.Logger().Warn("ranking sequence broken", zap.String("type", kind), zap.Error(err))
	}

	return &res, nil
}

// Preferences returns the signed-in user's preference payload, uninterpreted.
func (c *Client) Preferences(ctx context.Context) (domain.Metadata, error) {
	prefs, err := api.Get[domain.Metadata](ctx, c.api, "/search/preferences", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreference records an action on a drama. The response body is ignored.
func (c *Client) UpdatePreference(ctx context.Context, dramaID, action string) error {
	p := Preference{DramaID: dramaID, Action: action}
	if err := c.api.Validate(&p); err != nil {
		return err
	}

	if err := c.api.Do(ctx, http.MethodPost, "/search/preferences", nil, p, nil); err != nil {
		return fmt.Errorf("updating preference: %w", err)
	}
	return nil
}
