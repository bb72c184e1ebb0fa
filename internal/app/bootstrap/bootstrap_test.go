package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drama-platform-client/internal/config"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/session"
)

func TestNewSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		cfg    config.Config
		assert func(t *testing.T, s domain.SessionStore)
	}{
		{
			name: "memory",
			cfg:  config.Config{Session: config.SessionConfig{Driver: config.SessionDriverMemory}},
			assert: func(t *testing.T, s domain.SessionStore) {
				assert.IsType(t, &session.MemoryStore{}, s)
			},
		},
		{
			name: "file",
			cfg: config.Config{Session: config.SessionConfig{
				Driver:   config.SessionDriverFile,
				FilePath: filepath.Join(t.TempDir(), "session.json"),
			}},
			assert: func(t *testing.T, s domain.SessionStore) {
				assert.IsType(t, &session.FileStore{}, s)
			},
		},
		{
			name: "redis",
			cfg: config.Config{
				Session: config.SessionConfig{Driver: config.SessionDriverRedis, Key: "test:session"},
				Redis:   config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)},
			},
			assert: func(t *testing.T, s domain.SessionStore) {
				assert.IsType(t, &session.RedisStore{}, s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSessionStore(context.Background(), &tt.cfg, zap.NewNop())
			require.NoError(t, err)
			defer func() { _ = store.Close() }()

			tt.assert(t, store.SessionStore)

			require.NoError(t, store.Save(context.Background(), &domain.Session{AccessToken: "tok"}))
			s, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "tok", s.AccessToken)
		})
	}
}

func TestNewSessionStore_RedisUnreachable(t *testing.T) {
	cfg := config.Config{
		Session: config.SessionConfig{Driver: config.SessionDriverRedis, Key: "k"},
		Redis:   config.RedisConfig{Host: "127.0.0.1", Port: 1},
	}

	_, err := NewSessionStore(context.Background(), &cfg, zap.NewNop())

	assert.ErrorContains(t, err, "connecting to redis")
}

func TestNewSessionStore_UnknownDriver(t *testing.T) {
	cfg := config.Config{Session: config.SessionConfig{Driver: "cookie"}}

	_, err := NewSessionStore(context.Background(), &cfg, zap.NewNop())

	assert.ErrorContains(t, err, "unknown session driver")
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(mr.Port(), "%d", &port)
	require.NoError(t, err)
	return port
}
