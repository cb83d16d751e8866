package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/metrics"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
	"github.com/aussiebroadwan/chatgate/pkg/httpx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
	"github.com/rs/cors"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService  *service.AuthService
	UserService  *service.UserService
	TokenService *service.TokenService
	ChatService  *service.ChatService
	Metrics      *metrics.Collector
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger, corsOrigins []string) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// Global middleware chain: CORS outermost, then request logging.
	r.middlewares = []httpx.Middleware{
		c.Handler,
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz", "/metrics"),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerAuth()
	r.registerChat()

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{Users: r.UserService}
	r.Mux.Handle("POST /register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Token issuance is additionally keyed by the submitted username so one
	// address cannot spray attempts across many accounts unthrottled.
	tokenHandler := &TokenHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("GET /users/me",
		r.authenticated(&UserInfoHandler{}),
	)

	r.Mux.Handle("GET /protected",
		r.authenticated(&ProtectedHandler{}),
	)
}

func (r *Router) registerChat() {
	r.Mux.Handle("POST /chat",
		r.authenticated(&ChatHandler{Chat: r.ChatService}),
	)
	r.Mux.Handle("GET /chat/history",
		r.authenticated(&HistoryHandler{Chat: r.ChatService}),
	)
	r.Mux.Handle("DELETE /chat/history",
		r.authenticated(&ClearHistoryHandler{Chat: r.ChatService}),
	)
	r.Mux.Handle("GET /chat/rate-limit",
		r.authenticated(&RateLimitStatusHandler{Chat: r.ChatService}),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}",
		httpx.Chain(&RootHandler{Version: r.buildVersion},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}

func (r *Router) authenticated(h http.Handler) http.Handler {
	return httpx.Chain(h, AuthnMiddleware(r.AuthService))
}
