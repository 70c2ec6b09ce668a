package router

import (
	"net/http"

	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"
	"catalog-api/internal/response"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Route failure messages.
const (
	MsgRouteNotFound    = "Route not found"
	MsgMethodNotAllowed = "Method not allowed"
)

// Dependencies holds everything the router wires together.
type Dependencies struct {
	ProductHandler *handler.ProductHandler
	Authenticator  middleware.Authenticator
	Formatter      *response.Formatter
	Metrics        *middleware.Metrics
	// Gatherer backs the /metrics endpoint.
	Gatherer prometheus.Gatherer
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	Logger      zerolog.Logger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// RequestID -> Recovery -> Logging -> Metrics -> CORS
	// RemoteAddr stays the transport peer: the rate limiter keys on it, so
	// client-supplied X-Forwarded-For / X-Real-IP headers are not trusted.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(deps.Formatter, deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(deps.Metrics.Handler)
	r.Use(middleware.CORS)

	// Set before mounting so sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		deps.Formatter.Fail(w, http.StatusNotFound, MsgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		deps.Formatter.Fail(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/products", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Handler(deps.Formatter))
		}
		r.Use(middleware.RequireAuth(deps.Authenticator, deps.Formatter))
		deps.ProductHandler.Routes(r)
	})

	return r
}
