package http

import (
	"net/http"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/ratelimit"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

type RateLimitStatusHandler struct {
	Chat *service.ChatService
}

type usagePayload struct {
	Current   int    `json:"current"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Window    string `json:"window"`
}

type rateLimitStatusResponse struct {
	Global usagePayload `json:"global"`
	User   usagePayload `json:"user"`
}

// ServeHTTP reports current usage for both scopes without spending any
// budget.
func (h *RateLimitStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	status := h.Chat.RateLimitStatus(user.Username)
	httpx.WriteJSON(w, http.StatusOK, rateLimitStatusResponse{
		Global: toUsagePayload(status.Global),
		User:   toUsagePayload(status.User),
	})
}

func toUsagePayload(u ratelimit.Usage) usagePayload {
	return usagePayload{
		Current:   u.Current,
		Limit:     u.Limit,
		Remaining: u.Remaining,
		Window:    u.Window.String(),
	}
}
