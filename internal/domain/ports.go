package domain

import (
	"context"
	"time"
)

// Session is the single authenticated (token, user) pair held by a client process.
type Session struct {
	AccessToken string    `json:"accessToken"`
	User        *User     `json:"user,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session has a known expiry that has passed.
// A zero ExpiresAt never expires locally.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// SessionStore holds at most one Session.
// Implementations: internal/session/{memory,file,redis}.go
type SessionStore interface {
	// Load returns the current session, or nil when none is stored.
	Load(ctx context.Context) (*Session, error)

	// Save replaces the current session.
	Save(ctx context.Context, s *Session) error

	// Clear removes the current session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
