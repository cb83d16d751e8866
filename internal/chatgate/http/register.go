package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

type RegisterHandler struct {
	Users *service.UserService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ServeHTTP creates a new user. Duplicate usernames get a 409.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Malformed JSON body",
		})
		return
	}

	u, err := h.Users.Register(r.Context(), req.Username, req.Password, req.Email, req.FullName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}
