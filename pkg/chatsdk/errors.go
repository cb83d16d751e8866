package chatsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "unauthorized", "conflict")
	Code string `json:"error"`

	// Message is the human-readable description
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// RateLimitError is returned when an exchange is denied because an admission
// window is full. Scope tells the caller which window tripped.
type RateLimitError struct {
	Code         string  `json:"error"`
	Message      string  `json:"message"`
	Scope        string  `json:"scope"` // "global" or "user"
	RetryAfter   float64 `json:"retry_after"`
	CurrentUsage int     `json:"current_usage"`
	Limit        int     `json:"limit"`
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (%s scope): retry after %.2fs", e.Scope, e.RetryAfter)
}

// parseErrorResponse converts an error response body into a typed error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		var rlErr RateLimitError
		if err := json.Unmarshal(body, &rlErr); err == nil && rlErr.Code != "" {
			return &rlErr
		}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	// Not a structured error payload; surface what we got.
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       "unknown_error",
		Message:    string(body),
	}
}
