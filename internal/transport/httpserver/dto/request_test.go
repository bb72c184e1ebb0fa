package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/validator"
)

func newTestValidator() *validator.Validator {
	return validator.New()
}

// TestSearchRequest_Validation_Valid tests valid search requests.
func TestSearchRequest_Validation_Valid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		req  SearchRequest
	}{
		{
			name: "query only",
			req:  SearchRequest{Query: "总裁"},
		},
		{
			name: "full valid request",
			req: SearchRequest{
				Query:    "重生",
				Type:     "drama",
				Category: "都市",
				Sort:     "rating",
				Page:     2,
				Limit:    20,
			},
		},
		{
			name: "user type",
			req:  SearchRequest{Query: "ling", Type: "user"},
		},
		{
			name: "max limit",
			req:  SearchRequest{Query: "x", Limit: 100},
		},
		{
			name: "query at max length",
			req:  SearchRequest{Query: string(make([]byte, 200))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			assert.NoError(t, err)
		})
	}
}

// TestSearchRequest_Validation_Invalid tests invalid search requests.
func TestSearchRequest_Validation_Invalid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name        string
		req         SearchRequest
		expectedErr string
	}{
		{
			name:        "missing query",
			req:         SearchRequest{},
			expectedErr: "q is required",
		},
		{
			name:        "query too long",
			req:         SearchRequest{Query: string(make([]byte, 201))},
			expectedErr: "q must be at most 200",
		},
		{
			name:        "invalid type",
			req:         SearchRequest{Query: "x", Type: "video"},
			expectedErr: "type must be one of: drama user category",
		},
		{
			name:        "limit too large",
			req:         SearchRequest{Query: "x", Limit: 101},
			expectedErr: "limit must be at most 100",
		},
		{
			name:        "negative page",
			req:         SearchRequest{Query: "x", Page: -1},
			expectedErr: "page must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestSearchRequest_ToParams(t *testing.T) {
	req := SearchRequest{Query: "总裁", Type: "drama", Page: 2, Limit: 10}

	params := req.ToParams()

	assert.Equal(t, "总裁", params.Q)
	assert.Equal(t, domain.HitTypeDrama, params.Type)
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Empty(t, params.Extra)
}

func TestRankingRequest_Validation(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Validate(&RankingRequest{Period: "weekly", Limit: 20}))
	assert.NoError(t, v.Validate(&RankingRequest{Period: "hourly"}), "periods are the backend's to judge")

	err := v.Validate(&RankingRequest{Limit: 101})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit must be at most 100")
}

func TestLoginRequest_Validation(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Validate(&LoginRequest{Email: "ling@example.com", Password: "secret"}))

	err := v.Validate(&LoginRequest{Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password is required")
}
