// Package httptransport assembles the service's HTTP surface: shared
// middleware, operational endpoints and the formation routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"formation/internal/platform/metrics"
	"formation/internal/platform/middleware"
	ratelimit "formation/internal/ratelimit/middleware"
	"formation/pkg/domain"
	"formation/pkg/platform/middleware/metadata"
	"formation/pkg/platform/middleware/requesttime"
	"formation/pkg/platform/middleware/version"
)

// Routes is implemented by the formation handler.
type Routes interface {
	Register(r chi.Router)
	RegisterAdmin(r chi.Router)
}

// Config carries what the router needs beyond the routes themselves.
type Config struct {
	Version        string
	RequestTimeout time.Duration
	Metrics        *metrics.HTTPMetrics
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
	// AdminValidator guards the admin API; nil leaves it unmounted.
	AdminValidator middleware.AdminTokenValidator
	// RateLimiter throttles the public routes per client IP; nil disables it.
	RateLimiter *ratelimit.Middleware
}

// NewRouter wires the middleware chain and mounts every endpoint.
func NewRouter(logger *slog.Logger, cfg Config, routes Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.LatencyMiddleware)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", handleHealth(cfg.Version))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(v1 chi.Router) {
		v1.Use(version.ExtractVersion(domain.APIVersionV1))
		v1.Use(middleware.ContentTypeJSON)
		v1.Group(func(public chi.Router) {
			if cfg.RateLimiter != nil {
				public.Use(cfg.RateLimiter.RateLimit)
			}
			routes.Register(public)
		})

		if cfg.AdminValidator == nil {
			logger.Warn("admin API disabled: no signing key configured")
			return
		}
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(cfg.AdminValidator, logger))
			routes.RegisterAdmin(admin)
		})
	})

	return r
}
