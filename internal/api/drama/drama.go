// Package drama is the catalog contract: listings and details of dramas.
package drama

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
)

// Sort orders accepted by List.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListParams filters and pages the catalog listing.
type ListParams struct {
	Page     int                `query:"page" validate:"min=0"`
	Limit    int                `query:"limit" validate:"min=0"`
	Category string             `query:"category"`
	Status   domain.DramaStatus `query:"status" validate:"omitempty,oneof=ongoing completed upcoming"`
	Tag      string             `query:"tag"`
	Sort     string             `query:"sort"`
	Order    string             `query:"order" validate:"omitempty,oneof=asc desc"`
}

// Values encodes the non-zero fields as query parameters.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	api.SetInt(q, "page", p.Page)
	api.SetInt(q, "limit", p.Limit)
	api.SetString(q, "category", p.Category)
	api.SetString(q, "status", string(p.Status))
	api.SetString(q, "tag", p.Tag)
	api.SetString(q, "sort", p.Sort)
	api.SetString(q, "order", p.Order)
	return q
}

// Client calls the /dramas endpoints.
type Client struct {
	api *api.Client
}

// New creates a catalog client on the shared transport.
func New(c *api.Client) *Client {
	return &Client{api: c}
}

// List returns one page of the catalog in server order.
func (c *Client) List(ctx context.Context, p ListParams) ([]domain.Drama, error) {
	if err := c.api.Validate(&p); err != nil {
		return nil, err
	}

	dramas, err := api.Get[[]domain.Drama](ctx, c.api, "/dramas", p.Values())
	if err != nil {
		return nil, fmt.Errorf("listing dramas: %w", err)
	}

	return c.capped("list", dramas, p.Limit), nil
}

// GetByID returns a single drama.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Drama, error) {
	seg, err := api.PathSegment("id", id)
	if err != nil {
		return nil, err
	}

	d, err := api.Get[domain.Drama](ctx, c.api, "/dramas/"+seg, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching drama %s: %w", id, err)
	}

	return &d, nil
}

// GetHot returns up to limit dramas ordered by view velocity.
func (c *Client) GetHot(ctx context.Context, limit int) ([]domain.Drama, error) {
	return c.ranked(ctx, "hot", limit)
}

// GetNew returns up to limit dramas ordered by recency.
func (c *Client) GetNew(ctx context.Context, limit int) ([]domain.Drama, error) {
	return c.ranked(ctx, "new", limit)
}

// GetTrending returns up to limit trending dramas.
func (c *Client) GetTrending(ctx context.Context, limit int) ([]domain.Drama, error) {
	return c.ranked(ctx, "trending", limit)
}

func (c *Client) ranked(ctx context.Context, criterion string, limit int) ([]domain.Drama, error) {
	q, err := c.api.LimitQuery(limit)
	if err != nil {
		return nil, err
	}

	dramas, err := api.Get[[]domain.Drama](ctx, c.api, "/dramas/"+criterion, q)
	if err != nil {
		return nil, fmt.Errorf("fetching %s dramas: %w", criterion, err)
	}

	return c.capped(criterion, dramas, limit), nil
}

// capped drops anything past limit, keeping server order.
func (c *Client) capped(criterion string, dramas []domain.Drama, limit int) []domain.Drama {
	if limit <= 0 || len(dramas) <= limit {
		return dramas
	}

	c.api.Logger().Warn("backend returned more dramas than requested",
		zap.String("criterion", criterion),
		zap.Int("limit", limit),
		zap.Int("count", len(dramas)),
	)

	return dramas[:limit]
}
