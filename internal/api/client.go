// Package api is the single HTTP access point to the drama backend.
//
// One Client is shared process-wide. Every domain module (drama, category,
// auth, search) routes its calls through it so that the auth and session
// expiry interceptors apply uniformly. No call is ever retried.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/session"
	"drama-platform-client/internal/validator"
)

// DefaultBaseURL is the local development endpoint of the backend.
const DefaultBaseURL = "http://localhost:3001/api/v1"

// DefaultTimeout applies to every call; there is no per-call override.
const DefaultTimeout = 10 * time.Second

// Config holds transport configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	CB        CBConfig
}

// SessionExpiredFunc is invoked after a 401 has cleared the session.
// It is where the embedding application navigates to its login entry point.
type SessionExpiredFunc func(ctx context.Context)

// Envelope is the backend's response wrapper.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// Client is the shared transport. It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	cb        *gobreaker.CircuitBreaker[*resty.Response]
	store     domain.SessionStore
	validator *validator.Validator
	onExpired SessionExpiredFunc
	logger    *zap.Logger

	// tearingDown guards against re-entering teardown when the expiry
	// hook itself triggers another 401.
	tearingDown atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithSessionExpiredHook sets the callback run after a 401 teardown.
func WithSessionExpiredHook(fn SessionExpiredFunc) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// WithValidator replaces the default request validator.
func WithValidator(v *validator.Validator) Option {
	return func(c *Client) {
		if v != nil {
			c.validator = v
		}
	}
}

// New creates the shared Client. A nil store falls back to an in-memory store.
func New(cfg Config, store domain.SessionStore, logger *zap.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Client{
		store:     store,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.attachAuth).
		OnAfterResponse(c.inspectResponse)
	if cfg.UserAgent != "" {
		c.http.SetHeader("User-Agent", cfg.UserAgent)
	}

	if cfg.CB.Enabled {
		c.cb = NewCircuitBreaker("drama-api", cfg.CB, logger)
	}

	return c
}

// HTTPClient exposes the underlying *http.Client, e.g. for transport mocking.
func (c *Client) HTTPClient() *http.Client {
	return c.http.GetClient()
}

// Store returns the session store shared with the interceptors.
func (c *Client) Store() domain.SessionStore {
	return c.store
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Validate checks a request record before it is sent.
func (c *Client) Validate(v any) error {
	if err := c.validator.Validate(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return NewValidationError(fieldErrs.Error(), fieldErrs)
		}
		return NewValidationError(err.Error(), nil)
	}
	return nil
}

// Do performs one call. result, if non-nil, receives the decoded body.
// Failures are always returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	req := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json")
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	start := time.Now()
	resp, err := c.execute(req, method, path)
	if err == nil && resp != nil && !resp.IsSuccess() {
		err = newResponseError(resp)
	}

	if err != nil {
		apiErr := c.classify(resp, err)
		apiErr.Method = method
		apiErr.Path = path
		c.logFailure(apiErr, time.Since(start))
		return apiErr
	}

	c.logger.Debug("api call completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", resp.Request.Header.Get(HeaderRequestID)),
	)

	return nil
}

// Get performs a GET and unwraps the response envelope.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var env Envelope[T]
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Post performs a POST with a JSON body and unwraps the response envelope.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var env Envelope[T]
	if err := c.Do(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	if c.cb == nil {
		return req.Execute(method, path)
	}
	return c.cb.Execute(func() (*resty.Response, error) {
		return req.Execute(method, path)
	})
}

// classify turns whatever came back from resty into an *Error.
// A response error produced by inspectResponse is passed through as is, so
// the session teardown it triggered is not repeated.
func (c *Client) classify(resp *resty.Response, err error) *Error {
	if apiErr, ok := AsError(err); ok {
		return apiErr
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Kind: KindTransport, Message: "circuit open", Err: err}
	}

	if resp != nil && resp.RawResponse != nil {
		if !resp.IsSuccess() {
			return newResponseError(resp)
		}
		return &Error{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode(),
			Message:    "decoding response",
			Err:        err,
		}
	}

	return &Error{Kind: KindTransport, Err: err}
}

func (c *Client) logFailure(e *Error, d time.Duration) {
	fields := []zap.Field{
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.String("kind", e.Kind.String()),
		zap.Int("status", e.StatusCode),
		zap.Duration("duration", d),
		zap.Error(e),
	}

	switch e.Kind {
	case KindUnauthorized, KindValidation:
		c.logger.Warn("api call rejected", fields...)
	default:
		c.logger.Error("api call failed", fields...)
	}
}
