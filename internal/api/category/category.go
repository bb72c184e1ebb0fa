// Package category is the category contract.
package category

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
)

// Client calls the /categories endpoints.
type Client struct {
	api *api.Client
}

// New creates a category client on the shared transport.
func New(c *api.Client) *Client {
	return &Client{api: c}
}

// List returns categories ordered by sort order ascending, as the backend sends them.
func (c *Client) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := api.Get[[]domain.Category](ctx, c.api, "/categories", nil)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if !sort.SliceIsSorted(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	}) {
		c.api.Logger().Warn("categories not ordered by sortOrder", zap.Int("count", len(categories)))
	}

	return categories, nil
}

// Stats returns the backend's aggregate payload, uninterpreted.
func (c *Client) Stats(ctx context.Context) (domain.Metadata, error) {
	stats, err := api.Get[domain.Metadata](ctx, c.api, "/categories/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching category stats: %w", err)
	}
	return stats, nil
}
