package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/goreporte/internal/adapter/http/handler"
	"github.com/iho/goreporte/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ReportHandler *handler.ReportHandler
	AuthHandler   *handler.AuthHandler
	HealthHandler *handler.HealthHandler
	Logger        zerolog.Logger

	// Optional
	RateLimiter   *middleware.RateLimiter
	TokenVerifier middleware.TokenVerifier
	CORS          *middleware.CORSConfig
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if cfg.AuthHandler != nil {
		r.Post("/api/login", cfg.AuthHandler.Login)
	}

	// Report endpoints require a bearer token when a verifier is configured.
	r.Group(func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}

		r.Get("/api/GeneradorReporte", cfg.ReportHandler.Raw)
		r.Get("/api/v1/reports", cfg.ReportHandler.Get)
		r.Get("/api/v1/reports/export", cfg.ReportHandler.Export)
	})

	return r
}
