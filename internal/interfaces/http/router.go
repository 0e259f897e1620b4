// Package http assembles the chi route tree and the HTTP server around the
// plate generation service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
	"github.com/brailleforge/brailleforge/internal/interfaces/http/handlers"
	"github.com/brailleforge/brailleforge/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	PlateHandler  *handlers.PlateHandler
	HealthHandler *handlers.HealthHandler

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler
	LoggingConfig  *middleware.LoggingConfig

	// CORS enables cross-origin support when non-nil (browser front ends).
	CORS *middleware.CORSConfig

	// RateLimiter throttles requests when non-nil.
	RateLimiter     middleware.RateLimiter
	RateLimitConfig *middleware.RateLimitConfig
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration. It wires global middleware, public health endpoints, the
// versioned plate API, and the legacy generation aliases into a single
// http.Handler suitable for use with http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			logCfg = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		rlCfg := middleware.DefaultRateLimitConfig()
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		r.Use(middleware.RateLimit(cfg.RateLimiter, rlCfg))
	}

	// --- Public health endpoints ---
	r.Group(func(pub chi.Router) {
		if cfg.HealthHandler != nil {
			pub.Get("/healthz", cfg.HealthHandler.Liveness)
			pub.Get("/readyz", cfg.HealthHandler.Readiness)
		}
	})

	// --- Metrics endpoint (exposed publicly or behind internal firewall rule) ---
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerPlateRoutes(api, cfg.PlateHandler)
	})

	registerLegacyRoutes(r, cfg.PlateHandler)

	return r
}

// registerPlateRoutes mounts plate generation endpoints under /plates.
func registerPlateRoutes(r chi.Router, h *handlers.PlateHandler) {
	if h == nil {
		return
	}
	r.Route("/plates", func(pr chi.Router) {
		pr.Post("/generate", h.Generate)
		pr.Post("/preview", h.Preview)
	})
}

// registerLegacyRoutes mounts the pre-versioning generation endpoints kept
// for clients of the original web app. Each forces its plate type.
func registerLegacyRoutes(r chi.Router, h *handlers.PlateHandler) {
	if h == nil {
		return
	}
	r.Post("/generate_braille_stl", h.GeneratePositive)
	r.Post("/generate_counter_plate_stl", h.GenerateCounter)
}
