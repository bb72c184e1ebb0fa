// Package domain contains the wire entities exchanged with the drama backend.
// This package has no external dependencies (only stdlib).
package domain

import (
	"fmt"
	"time"
)

// DramaStatus represents the lifecycle status of a drama.
type DramaStatus string

const (
	DramaStatusOngoing   DramaStatus = "ongoing"
	DramaStatusCompleted DramaStatus = "completed"
	DramaStatusUpcoming  DramaStatus = "upcoming"
)

// Drama is a read-only snapshot of a catalog item owned by the backend.
type Drama struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Poster      string   `json:"poster"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`

	// Rating is only comparable across dramas of the same category.
	Rating       float64     `json:"rating"`
	ViewCount    int64       `json:"viewCount"`
	Duration     int         `json:"duration"`
	EpisodeCount int         `json:"episodeCount"`
	Status       DramaStatus `json:"status"`
	ReleaseDate  time.Time   `json:"releaseDate"`
	Director     string      `json:"director,omitempty"`
	Cast         []string    `json:"cast,omitempty"`

	IsHot     bool     `json:"isHot"`
	IsNew     bool     `json:"isNew"`
	VideoURLs []string `json:"videoUrls"`

	CommentCount  int64 `json:"commentCount,omitempty"`
	FavoriteCount int64 `json:"favoriteCount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingLabel formats the rating with one decimal of precision.
func (d *Drama) RatingLabel() string {
	return fmt.Sprintf("%.1f", d.Rating)
}

// HasTag reports whether the drama carries the given tag.
func (d *Drama) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsPlayable returns true if at least one video reference is present.
func (d *Drama) IsPlayable() bool {
	return len(d.VideoURLs) > 0
}
