package http

import (
	"net/http"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

type TokenHandler struct {
	Tokens *service.TokenService
}

// ServeHTTP implements the password grant. The request is form-encoded
// (OAuth2 password flow shape: username + password fields); the response is
// a bearer access token.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Malformed form body",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "username and password are required",
		})
		return
	}

	token, err := h.Tokens.Password(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, token)
}
