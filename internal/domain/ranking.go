package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrRankSequence is returned when ranks are not 1, 2, 3, ... without gaps.
var ErrRankSequence = errors.New("rank sequence broken")

// RankingMetrics is a snapshot of the metrics a ranking was computed from.
type RankingMetrics struct {
	ViewCount     int64   `json:"viewCount"`
	Rating        float64 `json:"rating"`
	CommentCount  int64   `json:"commentCount"`
	FavoriteCount int64   `json:"favoriteCount"`
}

// RankingEntry is a single ranked drama.
type RankingEntry struct {
	Rank    int            `json:"rank"`
	Drama   Drama          `json:"drama"`
	Score   float64        `json:"score"`
	Change  int            `json:"change"` // signed change from the previous period
	Metrics RankingMetrics `json:"metrics"`
}

// Period bounds the window a ranking was computed over.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RankingResult is a ranked list of dramas.
type RankingResult struct {
	Type        string         `json:"type"`
	Category    string         `json:"category,omitempty"`
	Items       []RankingEntry `json:"items"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Period      Period         `json:"period"`
}

// Validate checks that ranks start at 1 and increase by exactly one.
func (r *RankingResult) Validate() error {
	for i, entry := range r.Items {
		if entry.Rank != i+1 {
			return fmt.Errorf("%w: position %d has rank %d", ErrRankSequence, i, entry.Rank)
		}
	}
	return nil
}
