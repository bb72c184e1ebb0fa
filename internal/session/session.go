// Package session implements the client-side session store holding the
// current access token and authenticated user.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"drama-platform-client/internal/domain"
)

// New builds a session from a login/register response.
//
// ExpiresAt is derived from expiresIn (seconds). When the backend omits it,
// the token's own exp claim is used if the token is a parseable JWT.
// The signature is not verified; the backend remains the authority.
func New(accessToken string, user *domain.User, expiresIn int64, now time.Time) *domain.Session {
	s := &domain.Session{
		AccessToken: accessToken,
		User:        user,
	}

	if expiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(expiresIn) * time.Second).UTC()
		return s
	}

	if exp, ok := TokenExpiry(accessToken); ok {
		s.ExpiresAt = exp.UTC()
	}

	return s
}

// TokenExpiry extracts the exp claim from a JWT without verifying it.
func TokenExpiry(accessToken string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

var (
	_ domain.SessionStore = (*MemoryStore)(nil)
	_ domain.SessionStore = (*FileStore)(nil)
	_ domain.SessionStore = (*RedisStore)(nil)
)
