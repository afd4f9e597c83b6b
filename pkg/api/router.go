// Package api serves the status endpoints of the store server over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/api/handlers"
)

// ServiceName is reported by the liveness check.
const ServiceName = "cryptoolstore"

// RouterDeps are the collaborators of the status router.
type RouterDeps struct {
	// Checks run on every readiness request.
	Checks []handlers.Check

	// Metrics serves GET /metrics. Nil leaves the route unregistered.
	Metrics http.Handler
}

// NewRouter creates the chi router with its middleware and routes.
//
// Routes:
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check
//   - GET /metrics - Prometheus scrape
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(ServiceName, deps.Checks...)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs each request through the internal logger. Scrapes
// and health checks log at DEBUG so they do not flood the output.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		args := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if ww.Status() >= http.StatusInternalServerError {
			logger.Warn("API request failed", args...)
			return
		}
		logger.Debug("API request completed", args...)
	})
}
