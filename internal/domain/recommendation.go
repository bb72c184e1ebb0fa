package domain

import "time"

// RecommendationItem pairs a drama with its recommendation score and reason.
type RecommendationItem struct {
	Drama  Drama   `json:"drama"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
	Type   string  `json:"type"`
}

// RecommendationResult is ordered by descending score.
// Ties are backend-defined; callers must not rely on their order.
type RecommendationResult struct {
	Type          string               `json:"type"`
	Items         []RecommendationItem `json:"items"`
	Total         int                  `json:"total"`
	UserID        string               `json:"userId,omitempty"`
	GeneratedAt   time.Time            `json:"generatedAt"`
	Algorithm     string               `json:"algorithm"`
	ExecutionTime float64              `json:"executionTime"` // milliseconds
}

// Dramas returns the recommended dramas in result order.
func (r *RecommendationResult) Dramas() []Drama {
	dramas := make([]Drama, 0, len(r.Items))
	for _, item := range r.Items {
		dramas = append(dramas, item.Drama)
	}
	return dramas
}
