package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means no usable HTTP response: network error, timeout,
	// open circuit or an undecodable body.
	KindTransport Kind = iota
	// KindUnauthorized is a 401. The session has already been torn down.
	KindUnauthorized
	// KindValidation is any other 4xx, or a request rejected before sending.
	KindValidation
	// KindServer is a 5xx or any other non-2xx status.
	KindServer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching on Kind.
var (
	ErrTransport    = errors.New("transport failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrServer       = errors.New("server failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindValidation:
		return ErrValidation
	case KindServer:
		return ErrServer
	default:
		return ErrTransport
	}
}

// Error is returned by every failed call of this package and its modules.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Method     string
	Path       string
	Code       string // machine-readable reason from the backend, if any
	Message    string // backend message, verbatim
	Details    any
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Method != "" {
		sb.WriteString(e.Method)
		sb.WriteString(" ")
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}

	if e.StatusCode > 0 {
		fmt.Fprintf(&sb, "%s error (status %d)", e.Kind, e.StatusCode)
	} else {
		fmt.Fprintf(&sb, "%s error", e.Kind)
	}

	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the Kind sentinels.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Temporary reports whether the failure may succeed if the caller tries again.
// This package never retries on its own.
func (e *Error) Temporary() bool {
	return e.Kind == KindTransport || e.Kind == KindServer
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationError reports a request rejected before it was sent.
func NewValidationError(message string, details any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Details: details,
	}
}

// kindForStatus maps a non-2xx status to its Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// errorBody is the backend's error payload. Fields are optional.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

// newResponseError builds an *Error from a non-2xx response.
func newResponseError(resp *resty.Response) *Error {
	e := &Error{
		Kind:       kindForStatus(resp.StatusCode()),
		StatusCode: resp.StatusCode(),
		Method:     resp.Request.Method,
	}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		e.Message = body.Message
		e.Code = body.Code

		var s string
		if len(body.Error) > 0 && json.Unmarshal(body.Error, &s) == nil {
			if e.Message == "" {
				e.Message = s
			} else if e.Code == "" {
				e.Code = s
			}
		}
		if len(body.Details) > 0 && string(body.Details) != "null" {
			e.Details = body.Details
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode())
	}

	return e
}
