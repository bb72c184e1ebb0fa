package api

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// attachAuth is the outbound hook. It sets the bearer token when a session
// exists. It never fails the request: a store read error is logged and the
// request goes out unauthenticated.
func (c *Client) attachAuth(_ *resty.Client, r *resty.Request) error {
	r.SetHeader(HeaderRequestID, uuid.NewString())

	s, err := c.store.Load(r.Context())
	if err != nil {
		c.logger.Warn("session unavailable, sending request unauthenticated", zap.Error(err))
		return nil
	}
	if s == nil || s.AccessToken == "" {
		return nil
	}

	r.SetHeader("Authorization", "Bearer "+s.AccessToken)

	return nil
}

// inspectResponse is the inbound hook. Successful responses pass through.
// A 401 clears the session and fires the expiry callback before the error is
// returned; any other failure is returned unchanged. Nothing is re-issued.
func (c *Client) inspectResponse(_ *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	apiErr := newResponseError(resp)
	if apiErr.Kind == KindUnauthorized {
		c.teardown(resp.Request.Context())
	}

	return apiErr
}

// teardown clears the session and notifies the application. A 401 raised
// while a teardown is already running does not start another one.
func (c *Client) teardown(ctx context.Context) {
	if !c.tearingDown.CompareAndSwap(false, true) {
		c.logger.Debug("session teardown already in progress")
		return
	}
	defer c.tearingDown.Store(false)

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session after 401", zap.Error(err))
	}

	c.logger.Info("session expired, session cleared")

	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}

// ExpireSession runs the same teardown as a 401 response. It is used when
// the session is found to be expired locally, before any request fails.
func (c *Client) ExpireSession(ctx context.Context) {
	c.teardown(ctx)
}
