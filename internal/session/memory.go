package session

import (
	"context"
	"sync"

	"drama-platform-client/internal/domain"
)

// MemoryStore keeps the session in process memory. It does not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	current *domain.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the current session, or nil.
func (m *MemoryStore) Load(_ context.Context) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, nil
	}
	s := *m.current
	return &s, nil
}

// Save replaces the current session.
func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == nil {
		m.current = nil
		return nil
	}
	cp := *s
	m.current = &cp
	return nil
}

// Clear drops the current session.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}
