package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

type HistoryHandler struct {
	Chat *service.ChatService
}

type historyResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
}

// ServeHTTP returns the caller's history, most recent last. An optional
// positive `limit` query parameter trims to the tail that many messages.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "limit must be an integer",
			})
			return
		}
		limit = n
	}

	msgs, err := h.Chat.History(r.Context(), user.Username, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageResponse(m)
	}

	httpx.WriteJSON(w, http.StatusOK, historyResponse{
		Messages: out,
		Total:    len(out),
	})
}

type ClearHistoryHandler struct {
	Chat *service.ChatService
}

type clearHistoryResponse struct {
	Message         string `json:"message"`
	DeletedMessages int64  `json:"deleted_messages"`
}

// ServeHTTP removes all of the caller's messages.
func (h *ClearHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	removed, err := h.Chat.ClearHistory(r.Context(), user.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := "Chat history cleared successfully"
	if removed == 0 {
		msg = "No chat history found"
	}

	httpx.WriteJSON(w, http.StatusOK, clearHistoryResponse{
		Message:         msg,
		DeletedMessages: removed,
	})
}
