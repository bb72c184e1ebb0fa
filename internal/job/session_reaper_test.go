package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/session"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type brokenStore struct {
	session.MemoryStore
}

func (*brokenStore) Load(context.Context) (*domain.Session, error) {
	return nil, errors.New("connection refused")
}

func newTestReaper(store domain.SessionStore, expired *atomic.Int32) *SessionReaper {
	client := api.New(api.Config{}, store, zap.NewNop(), api.WithSessionExpiredHook(func(context.Context) {
		expired.Add(1)
	}))

	r := NewSessionReaper(store, client, ReaperConfig{Interval: 10 * time.Millisecond}, zap.NewNop())
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestSessionReaper_Reap(t *testing.T) {
	tests := []struct {
		name      string
		session   *domain.Session
		wantReap  bool
		wantStill bool
	}{
		{"no session", nil, false, false},
		{"no expiry", &domain.Session{AccessToken: "tok"}, false, true},
		{"still valid", &domain.Session{AccessToken: "tok", ExpiresAt: fixedNow.Add(time.Minute)}, false, true},
		{"expired", &domain.Session{AccessToken: "tok", ExpiresAt: fixedNow.Add(-time.Second)}, true, false},
		{"expires now", &domain.Session{AccessToken: "tok", ExpiresAt: fixedNow}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if tt.session != nil {
				require.NoError(t, store.Save(context.Background(), tt.session))
			}

			var expired atomic.Int32
			r := newTestReaper(store, &expired)

			reaped, err := r.Reap(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantReap, reaped)

			s, _ := store.Load(context.Background())
			assert.Equal(t, tt.wantStill, s != nil)

			if tt.wantReap {
				assert.Equal(t, int32(1), expired.Load(), "expiry hook fires")
			} else {
				assert.Equal(t, int32(0), expired.Load())
			}
		})
	}
}

func TestSessionReaper_StoreError(t *testing.T) {
	var expired atomic.Int32
	r := newTestReaper(&brokenStore{}, &expired)

	reaped, err := r.Reap(context.Background())

	require.Error(t, err)
	assert.False(t, reaped)
	assert.Equal(t, int32(0), expired.Load())
}

func TestSessionReaper_StartStop(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &domain.Session{
		AccessToken: "tok",
		ExpiresAt:   fixedNow.Add(-time.Minute),
	}))

	var expired atomic.Int32
	r := newTestReaper(store, &expired)

	r.Start(false)
	assert.Eventually(t, func() bool {
		s, _ := store.Load(context.Background())
		return s == nil
	}, time.Second, 5*time.Millisecond)
	r.Stop()

	assert.Equal(t, int32(1), expired.Load())
}
