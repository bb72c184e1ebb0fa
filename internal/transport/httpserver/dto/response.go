package dto

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"drama-platform-client/internal/api"
	"drama-platform-client/internal/domain"
)

// LoginPath is where a browser is sent once its session is gone.
const LoginPath = "/login"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error    string      `json:"error"`
	Code     string      `json:"code,omitempty"`
	Details  interface{} `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// FromError maps an error to a status code and body. Backend failures keep
// the backend status and message; a lost session carries the login redirect.
func FromError(err error) (int, ErrorResponse) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fiber.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		}
	}

	resp := ErrorResponse{
		Error:   apiErr.Message,
		Code:    apiErr.Code,
		Details: apiErr.Details,
	}

	status := apiErr.StatusCode
	switch apiErr.Kind {
	case api.KindTransport:
		status = fiber.StatusBadGateway
		resp.Error = "backend unavailable"
		resp.Code = "UPSTREAM_UNAVAILABLE"
	case api.KindUnauthorized:
		status = fiber.StatusUnauthorized
		resp.Redirect = LoginPath
	case api.KindValidation:
		if status == 0 {
			status = fiber.StatusBadRequest
		}
	}

	if resp.Error == "" {
		resp.Error = http.StatusText(status)
	}
	if resp.Code == "" {
		resp.Code = defaultCode(apiErr.Kind)
	}

	return status, resp
}

func defaultCode(k api.Kind) string {
	switch k {
	case api.KindUnauthorized:
		return "SESSION_EXPIRED"
	case api.KindValidation:
		return "VALIDATION_ERROR"
	default:
		return "UPSTREAM_ERROR"
	}
}

// LoginResponse is returned by POST /api/auth/login. The token stays in the
// session store and is never echoed back.
type LoginResponse struct {
	User      domain.User `json:"user"`
	ExpiresIn int64       `json:"expiresIn"`
}

// FromAuthResult converts domain.AuthResult to LoginResponse.
func FromAuthResult(res *domain.AuthResult) LoginResponse {
	return LoginResponse{User: res.User, ExpiresIn: res.ExpiresIn}
}

// DataResponse wraps a payload the same way the backend does.
type DataResponse struct {
	Data interface{} `json:"data"`
}
