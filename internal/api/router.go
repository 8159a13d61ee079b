// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marekv42/reelrank/internal/config"
	"github.com/marekv42/reelrank/internal/middleware"
	"github.com/marekv42/reelrank/internal/service"
)

// Router wires handlers, middleware, and routes into one http.Handler.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
	monitor *middleware.LatencyMonitor
}

// NewRouter builds the router from configuration. monitor may be nil
// when latency tracking is not wanted, as in most tests.
func NewRouter(svc *service.Service, cfg *config.Config, monitor *middleware.LatencyMonitor) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled

	return &Router{
		handler: NewHandler(svc, cfg.API),
		mw:      NewChiMiddleware(mwCfg),
		monitor: monitor,
	}
}

// Setup configures all routes and returns the ready handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())
	if router.monitor != nil {
		r.Use(router.monitor.Middleware)
	}

	// Non-2xx responses carry the JSON error envelope, including the
	// ones the router itself produces.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeValidation, "Method not allowed", nil)
	})

	r.Get("/", router.handler.Root)

	// Health gets its own permissive rate limit so monitoring probes
	// do not eat into the data endpoint budget.
	r.Group(func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Get("/health", router.handler.Health)
	})

	// Prometheus scrape endpoint. promhttp negotiates its own
	// compression, so it stays outside the gzip middleware.
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/model-info", router.handler.ModelInfo)
		r.Get("/movies/search", router.handler.SearchMovies)
		r.Get("/movies/{id}", router.handler.GetMovie)
		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/similar-items", router.handler.SimilarItems)
	})

	return r
}
