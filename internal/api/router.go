// Package api provides the HTTP surface of the air quality screen.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/giljurha/Airvisual/internal/api/handler"
	"github.com/giljurha/Airvisual/internal/api/middleware"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Screen is the refresh controller behind /v1/screen.
	Screen handler.ScreenSource
	// Board receives the controller's renders and notices.
	Board *handler.Board
	// Locale selects the category labels in responses.
	Locale string

	// Registry reports provider health on /v1/ops/status. Optional.
	Registry *resilience.Registry
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airvisual"
	}

	// Order matters: the request id must exist before tracing and logging.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	board := cfg.Board
	if board == nil {
		board = handler.NewBoard(0, cfg.Logger)
	}

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Screen)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		if cfg.Screen == nil {
			return
		}
		screenHandler := handler.NewScreenHandler(cfg.Screen, board, cfg.Locale)

		r.Route("/screen", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
				r.Get("/", screenHandler.Get)
				r.Get("/notices", screenHandler.Notices)
			})
			// Each refresh spends air quality API quota.
			r.With(middleware.RateLimitByIP(middleware.RefreshRateLimit)).Post("/refresh", screenHandler.Refresh)
		})
	})

	return r
}
