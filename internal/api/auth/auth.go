// Package auth is the authentication contract. Login and Register persist
// the issued token into the session store shared with the transport, so
// every later call is authenticated; Logout removes it again.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/session"
)

// ErrMissingToken is returned when a successful login or register response
// carries no access token.
var ErrMissingToken = errors.New("auth response carried no access token")

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Nickname        string `json:"nickname,omitempty"`
}

// Client calls the /auth endpoints.
type Client struct {
	api *api.Client
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the time source used to compute session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates an auth client on the shared transport.
func New(c *api.Client, opts ...Option) *Client {
	client := &Client{api: c, now: time.Now}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*domain.AuthResult, error) {
	if err := c.api.Validate(&creds); err != nil {
		return nil, err
	}

	res, err := api.Post[domain.AuthResult](ctx, c.api, "/auth/login", creds)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if err := c.persist(ctx, &res); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	return &res, nil
}

// Register creates an account and stores the resulting session.
func (c *Client) Register(ctx context.Context, reg Registration) (*domain.AuthResult, error) {
	if err := c.api.Validate(&reg); err != nil {
		return nil, err
	}

	res, err := api.Post[domain.AuthResult](ctx, c.api, "/auth/register", reg)
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	if err := c.persist(ctx, &res); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	return &res, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	u, err := api.Get[domain.User](ctx, c.api, "/auth/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &u, nil
}

// Logout invalidates the server-side session and clears the local one.
// The local session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	callErr := c.api.Do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	if callErr != nil {
		callErr = fmt.Errorf("logging out: %w", callErr)
	}

	var clearErr error
	if err := c.api.Store().Clear(ctx); err != nil {
		clearErr = fmt.Errorf("clearing session: %w", err)
	}

	return errors.Join(callErr, clearErr)
}

// CheckUsername reports whether username is still free.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	return c.available(ctx, "check-username", "username", username)
}

// CheckEmail reports whether email is still free.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.available(ctx, "check-email", "email", email)
}

func (c *Client) available(ctx context.Context, endpoint, field, value string) (bool, error) {
	seg, err := api.PathSegment(field, value)
	if err != nil {
		return false, err
	}

	res, err := api.Get[domain.Availability](ctx, c.api, "/auth/"+endpoint+"/"+seg, nil)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", field, err)
	}

	return res.Available, nil
}

func (c *Client) persist(ctx context.Context, res *domain.AuthResult) error {
	if res.AccessToken == "" {
		return ErrMissingToken
	}

	user := res.User
	s := session.New(res.AccessToken, &user, res.ExpiresIn, c.now())
	if err := c.api.Store().Save(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	c.api.Logger().Info("session established",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", s.ExpiresAt),
	)

	return nil
}
