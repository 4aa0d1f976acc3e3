package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/lorrc/user-directory/internal/adapters/primary/http/middleware"
	"github.com/lorrc/user-directory/internal/infrastructure/metrics"
)

// RouterConfig collects everything the router wires together.
type RouterConfig struct {
	Logger          *slog.Logger
	Pages           *PageHandler
	Users           *UsersHandler
	Health          *HealthHandler
	Session         mw.SessionConfig
	RateLimiter     *mw.RateLimiter // nil disables rate limiting
	Metrics         *metrics.Metrics
	MetricsGatherer prometheus.Gatherer // nil disables /metrics
	AllowedOrigins  []string
}

// NewRouter builds the chi router for the page, the JSON API and the health checks.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(mw.Metrics(cfg.Metrics))
	}

	cfg.Health.RegisterRoutes(r)
	if cfg.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Use(mw.Session(cfg.Session))

		cfg.Pages.RegisterRoutes(r)

		r.Route("/api/v1", func(r chi.Router) {
			// go-chi/cors treats an empty origin list as "*", so credentials
			// are only allowed for an explicit list.
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
				ExposedHeaders:   []string{mw.RequestIDHeader},
				AllowCredentials: len(cfg.AllowedOrigins) > 0,
				MaxAge:           300,
			}))
			r.Route("/users", cfg.Users.RegisterRoutes)
		})
	})

	return r
}
