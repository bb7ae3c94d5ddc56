package zia

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoCredentials   = errors.New("zia: no credentials configured")
	ErrNoBaseURL       = errors.New("zia: no cloud or base URL configured")
	ErrInvalidAPIKey   = errors.New("zia: api key must be at least 12 characters")
	ErrNoSessionCookie = errors.New("zia: login response carried no session cookie")
)

// APIError represents a general ZIA API error.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	// Body is the raw response body, kept for diagnostics.
	Body string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("zia: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("zia: API error %d: %s", e.StatusCode, e.Message)
}

// As lets errors.As reach the embedded *APIError of the typed errors below.
func (e *APIError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = e
		return true
	}
	return false
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("zia: authentication failed: %s", e.Message)
}

// NotFoundError indicates the requested resource was not found (404).
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("zia: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("zia: resource not found: %s", e.Message)
}

// ValidationError indicates invalid request data, either rejected by the
// server (400) or caught before sending.
type ValidationError struct {
	APIError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("zia: validation error: %s", e.Message)
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("zia: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "zia: rate limit exceeded"
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("zia: server error %d: %s", e.StatusCode, e.Message)
}

// FailureKind classifies the last failure of an exhausted call.
type FailureKind int

const (
	FailureTransport FailureKind = iota + 1
	FailureRateLimited
	FailureAuthentication
	FailureStatus
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureRateLimited:
		return "rate limited"
	case FailureAuthentication:
		return "authentication"
	case FailureStatus:
		return "status"
	default:
		return "unknown"
	}
}

// RetryExhaustedError is returned when a call used up all its attempts.
// Err holds the last failure and can be inspected with errors.As.
type RetryExhaustedError struct {
	Kind     FailureKind
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("zia: giving up after %d attempts (%s): %v", e.Attempts, e.Kind, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(statusCode int, body []byte, headers http.Header) error {
	base := APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	// Try to parse structured JSON error response
	if err := json.Unmarshal(body, &base); err != nil || base.Message == "" {
		base.Message = strings.TrimSpace(string(body))
	}
	base.StatusCode = statusCode

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfterBody(body)
		if retryAfter == 0 {
			retryAfter = parseRetryAfter(headers.Get("Retry-After"))
		}
		return &RateLimitError{
			APIError:   base,
			RetryAfter: retryAfter,
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseRetryAfterBody reads the "Retry-After" member of a 429 body, which
// ZIA sends as e.g. "2 seconds" or a bare number.
func parseRetryAfterBody(body []byte) time.Duration {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}

	switch v := payload["Retry-After"].(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 0
		}
		if seconds, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
