package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/chatgate/pkg/httpx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

// RootHandler serves the unauthenticated service information endpoint.
type RootHandler struct {
	Version string
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the chatgate API",
		"docs":    "https://github.com/aussiebroadwan/chatgate",
		"version": h.Version,
	})
}

// handleLivez reports process liveness only.
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(r.startTime).String(),
	})
}

// handleReadyz reports whether the service can actually serve traffic,
// which means the store must answer.
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		slogx.FromContext(req.Context()).Error("readiness check failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
