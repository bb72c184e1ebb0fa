package search

import (
	"net/url"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
)

// Recommendation types served by /search/recommendations/{type}.
const (
	RecommendPopular       = "popular"
	RecommendTrending      = "trending"
	RecommendNew           = "new"
	RecommendCollaborative = "collaborative"
	RecommendContent       = "content"
)

// Ranking types served by /search/rankings/{type}.
const (
	RankingHot      = "hot"
	RankingRating   = "rating"
	RankingNew      = "new"
	RankingTrending = "trending"
)

// Ranking periods known at the time of writing. Other values are forwarded.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAll     = "all"
)

// Common preference actions. The backend owns the set; any non-empty
// action is sent.
const (
	ActionLike     = "like"
	ActionFavorite = "favorite"
	ActionView     = "view"
	ActionShare    = "share"
)

// Params is a free-text search. Extra carries backend filters that have no
// dedicated field; it never overrides a dedicated one.
type Params struct {
	Q        string            `query:"q" validate:"required"`
	Type     domain.HitType    `query:"type" validate:"omitempty,oneof=drama user category"`
	Category string            `query:"category"`
	Page     int               `query:"page" validate:"min=0"`
	Limit    int               `query:"limit" validate:"min=0"`
	Sort     string            `query:"sort"`
	Extra    map[string]string `query:"-"`
}

// Values encodes the search as query parameters.
func (p Params) Values() url.Values {
	q := url.Values{}
	for k, v := range p.Extra {
		if k != "" && v != "" {
			q.Set(k, v)
		}
	}
	api.SetString(q, "q", p.Q)
	api.SetString(q, "type", string(p.Type))
	api.SetString(q, "category", p.Category)
	api.SetInt(q, "page", p.Page)
	api.SetInt(q, "limit", p.Limit)
	api.SetString(q, "sort", p.Sort)
	return q
}

// RecommendationParams narrows a recommendation lookup.
type RecommendationParams struct {
	Limit    int    `query:"limit" validate:"min=0"`
	Category string `query:"category"`
}

// Values encodes the non-zero fields as query parameters.
func (p RecommendationParams) Values() url.Values {
	q := url.Values{}
	api.SetInt(q, "limit", p.Limit)
	api.SetString(q, "category", p.Category)
	return q
}

// RankingParams narrows a ranking lookup.
type RankingParams struct {
	Limit    int    `query:"limit" validate:"min=0"`
	Category string `query:"category"`
	Period   string `query:"period"`
}

// Values encodes the non-zero fields as query parameters.
func (p RankingParams) Values() url.Values {
	q := url.Values{}
	api.SetInt(q, "limit", p.Limit)
	api.SetString(q, "category", p.Category)
	api.SetString(q, "period", p.Period)
	return q
}

// Preference is the preference write body.
type Preference struct {
	DramaID string `json:"dramaId" validate:"required"`
	Action  string `json:"action" validate:"required"`
}
