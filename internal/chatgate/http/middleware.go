package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// UserFromContext returns the authenticated user injected by
// AuthnMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// AuthnMiddleware authenticates the bearer token and injects the resolved
// user into the request context. Every failure produces the same 401; the
// resolver already collapses the causes.
func AuthnMiddleware(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			user, err := auth.Authenticate(ctx, raw)
			if err != nil {
				// Internal cause already logged by the resolver.
				writeBearerError(w)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyUser, user)
			ctx = slogx.WithAttrs(ctx, "username", user.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-shaped bearer challenge, deliberately cause-free.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "Could not validate credentials",
	})
}
