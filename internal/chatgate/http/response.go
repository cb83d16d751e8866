package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/ratelimit"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitedResponse is the 429 payload for the guarded exchange. It
// carries enough for the caller to back off correctly.
type RateLimitedResponse struct {
	Error        string  `json:"error"`
	Message      string  `json:"message"`
	Scope        string  `json:"scope"`
	RetryAfter   float64 `json:"retry_after"` // seconds
	CurrentUsage int     `json:"current_usage"`
	Limit        int     `json:"limit"`
}

// UserResponse is a user's public fields; the password digest never leaves
// the service.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Disabled bool   `json:"disabled"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
	}
}

// MessageResponse is one history entry on the wire.
type MessageResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Username:  m.Username,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
}

// writeServiceError maps service-layer failures onto wire responses. The
// handlers funnel every error through here so the mapping stays in one
// place.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *ratelimit.DeniedError
	switch {
	case errors.As(err, &denied):
		writeRateLimited(w, denied)
	case errors.Is(err, service.ErrUnauthorized):
		writeBearerError(w)
	case errors.Is(err, service.ErrConflict):
		httpx.WriteJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: "Username already registered",
		})
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	default:
		slogx.FromContext(r.Context()).Error("internal error", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "server_error",
			Message: "Internal server error",
		})
	}
}

func writeRateLimited(w http.ResponseWriter, denied *ratelimit.DeniedError) {
	retrySecs := denied.RetryAfter.Seconds()

	// Retry-After is whole seconds, rounded up so "retry now" never lies.
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retrySecs)+1))
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", denied.Limit))

	msg := fmt.Sprintf("You have reached your limit of %d requests per minute. Please try again later.", denied.Limit)
	if denied.Scope == ratelimit.ScopeGlobal {
		msg = fmt.Sprintf("The service has reached its limit of %d requests per minute. Please try again later.", denied.Limit)
	}

	httpx.WriteJSON(w, http.StatusTooManyRequests, RateLimitedResponse{
		Error:        "rate_limit_exceeded",
		Message:      msg,
		Scope:        string(denied.Scope),
		RetryAfter:   retrySecs,
		CurrentUsage: denied.CurrentUsage,
		Limit:        denied.Limit,
	})
}
