package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drama-platform-client/internal/domain"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestNew_UsesExpiresIn(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &domain.User{ID: "u1", Username: "ling"}

	s := New("tok123", user, 3600, now)

	assert.Equal(t, "tok123", s.AccessToken)
	assert.Equal(t, user, s.User)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}

func TestNew_FallsBackToJWTExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(2 * time.Hour)

	s := New(signedToken(t, exp), nil, 0, now)

	assert.True(t, s.ExpiresAt.Equal(exp), "expected %v, got %v", exp, s.ExpiresAt)
}

func TestNew_OpaqueTokenHasNoExpiry(t *testing.T) {
	s := New("not-a-jwt", nil, 0, time.Now())

	assert.True(t, s.ExpiresAt.IsZero())
	assert.False(t, s.Expired(time.Now()))
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, ok := TokenExpiry(token)
	assert.False(t, ok)
}
