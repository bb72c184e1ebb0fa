package domain

import "encoding/json"

// HitType represents the kind of entity a search hit refers to.
type HitType string

const (
	HitTypeDrama    HitType = "drama"
	HitTypeUser     HitType = "user"
	HitTypeCategory HitType = "category"
)

// Metadata is an opaque key/value payload passed through without interpretation.
type Metadata map[string]json.RawMessage

// SearchHit is a single heterogeneous search result.
type SearchHit struct {
	ID          string   `json:"id"`
	Type        HitType  `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Score       float64  `json:"score"`
	Highlights  []string `json:"highlights,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Pagination describes a page of search results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ExpectedPages returns ceil(total/limit), or 0 when limit is not positive.
func ExpectedPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) > 0 {
		pages++
	}
	return int(pages)
}

// Consistent reports whether Pages == ceil(total/Limit). Always true when Limit <= 0.
func (p Pagination) Consistent(total int64) bool {
	if p.Limit <= 0 {
		return true
	}
	return p.Pages == ExpectedPages(total, p.Limit)
}

// SearchResult holds one page of search hits.
type SearchResult struct {
	Query         string      `json:"query"`
	Total         int64       `json:"total"`
	Items         []SearchHit `json:"items"`
	Pagination    Pagination  `json:"pagination"`
	Suggestions   []string    `json:"suggestions,omitempty"`
	ExecutionTime float64     `json:"executionTime"` // milliseconds
}

// PopularSearch is a trending search keyword.
// Trend is carried as received; its values are backend-defined.
type PopularSearch struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
	Trend   string `json:"trend"`
}
