package domain

import (
	"net/url"
	"time"
)

// Category is a catalog grouping. Name doubles as a routing key.
type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	DramaCount  int       `json:"dramaCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoutingKey returns the name escaped for use as a URL path segment.
func (c *Category) RoutingKey() string {
	return url.PathEscape(c.Name)
}
