package http

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/chatgate/pkg/httpx"
)

// UserInfoHandler returns the authenticated user's public fields.
type UserInfoHandler struct{}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// ProtectedHandler is a minimal authenticated endpoint: it proves the token
// chain works and nothing else.
type ProtectedHandler struct{}

func (h *ProtectedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeBearerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Hello %s! This is a protected route.", user.Username),
		"user":    user.Username,
	})
}
