package api

import (
	"net/url"
	"strconv"
	"strings"
)

type limitParam struct {
	Limit int `query:"limit" validate:"min=0"`
}

// LimitQuery validates a result cap and encodes it as the limit query
// parameter. Zero leaves the backend default in place; any positive cap is
// forwarded as is.
func (c *Client) LimitQuery(limit int) (url.Values, error) {
	if err := c.Validate(&limitParam{Limit: limit}); err != nil {
		return nil, err
	}

	q := url.Values{}
	SetInt(q, "limit", limit)
	return q, nil
}

// PathSegment escapes value for use as a single path segment.
// An empty or blank value is a validation error.
func PathSegment(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", NewValidationError(name+" is required", nil)
	}
	return url.PathEscape(value), nil
}

// SetInt adds key when n is positive.
func SetInt(q url.Values, key string, n int) {
	if n > 0 {
		q.Set(key, strconv.Itoa(n))
	}
}

// SetString adds key when s is not empty.
func SetString(q url.Values, key, s string) {
	if s != "" {
		q.Set(key, s)
	}
}
