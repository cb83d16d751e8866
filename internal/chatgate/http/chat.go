package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

type ChatHandler struct {
	Chat *service.ChatService
}

type chatRequest struct {
	Content string `json:"content"`
}

// ServeHTTP runs one guarded exchange and returns the reply message. Over
// budget the caller gets a 429 with scope, retry_after, usage and limit;
// nothing is written to history in that case.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Malformed JSON body",
		})
		return
	}

	reply, err := h.Chat.Send(r.Context(), user, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMessageResponse(reply))
}
