// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"drama-platform-client/internal/api/auth"
	"drama-platform-client/internal/api/search"
	"drama-platform-client/internal/domain"
)

// SearchRequest represents the query parameters of GET /api/search.
type SearchRequest struct {
	Query    string `query:"q" validate:"required,max=200"`
	Type     string `query:"type" validate:"omitempty,oneof=drama user category"`
	Category string `query:"category" validate:"max=50"`
	Sort     string `query:"sort" validate:"max=50"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ToParams converts SearchRequest to search.Params.
func (r *SearchRequest) ToParams() search.Params {
	return search.Params{
		Q:        r.Query,
		Type:     domain.HitType(r.Type),
		Category: r.Category,
		Sort:     r.Sort,
		Page:     r.Page,
		Limit:    r.Limit,
	}
}

// RankingRequest represents the query parameters of GET /api/rankings/:type.
type RankingRequest struct {
	Category string `query:"category" validate:"max=50"`
	Period   string `query:"period"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ToParams converts RankingRequest to search.RankingParams.
func (r *RankingRequest) ToParams() search.RankingParams {
	return search.RankingParams{
		Limit:    r.Limit,
		Category: r.Category,
		Period:   r.Period,
	}
}

// LoginRequest represents the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ToCredentials converts LoginRequest to auth.Credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}
