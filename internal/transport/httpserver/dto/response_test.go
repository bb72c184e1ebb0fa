package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"drama-platform-client/internal/api"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantError    string
		wantCode     string
		wantRedirect string
	}{
		{
			name:         "unauthorized carries redirect",
			err:          &api.Error{Kind: api.KindUnauthorized, StatusCode: 401, Message: "Token expired"},
			wantStatus:   401,
			wantError:    "Token expired",
			wantCode:     "SESSION_EXPIRED",
			wantRedirect: "/login",
		},
		{
			name:       "validation keeps status and message",
			err:        &api.Error{Kind: api.KindValidation, StatusCode: 409, Message: "用户名已存在", Code: "USERNAME_TAKEN"},
			wantStatus: 409,
			wantError:  "用户名已存在",
			wantCode:   "USERNAME_TAKEN",
		},
		{
			name:       "local validation is a bad request",
			err:        api.NewValidationError("limit must be at most 100", nil),
			wantStatus: 400,
			wantError:  "limit must be at most 100",
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "server keeps status",
			err:        &api.Error{Kind: api.KindServer, StatusCode: 503},
			wantStatus: 503,
			wantError:  "Service Unavailable",
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:       "transport is a bad gateway",
			err:        &api.Error{Kind: api.KindTransport, Err: errors.New("dial tcp: connection refused")},
			wantStatus: 502,
			wantError:  "backend unavailable",
			wantCode:   "UPSTREAM_UNAVAILABLE",
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantStatus: 500,
			wantError:  "internal server error",
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantRedirect, resp.Redirect)
		})
	}
}
