package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/telemetry"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api/handlers"
	apimw "github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api/middleware"
)

// RouterDeps are the collaborators the router serves.
type RouterDeps struct {
	Dispatcher handlers.Dispatcher
	Store      handlers.Checker

	// Tokens enables bearer authentication of /api/v1 when non-nil.
	Tokens apimw.TokenValidator

	// Metrics may be nil.
	Metrics HTTPMetrics
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET  /health, /health/ready
//   - POST /api/v1/requests, /api/v1/requests/sync
//   - GET  /api/v1/requests
//   - POST /api/v1/requests/{serverId}/cancel, /api/v1/requests/{serverId}/retry
//   - GET  /api/v1/callbacks/result, /api/v1/callbacks/progress (WebSocket)
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Metrics))
	r.Use(middleware.Recoverer)

	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Dispatcher)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.JWTAuth(deps.Tokens))

		requests := handlers.NewRequestHandler(deps.Dispatcher)
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requests.Submit)
			r.Post("/sync", requests.SubmitSync)
			r.Get("/", requests.List)
			r.Post("/{serverId}/cancel", requests.Cancel)
			r.Post("/{serverId}/retry", requests.Retry)
		})

		callbacks := handlers.NewCallbackHandler(deps.Dispatcher)
		r.Route("/callbacks", func(r chi.Router) {
			r.Get("/result", callbacks.Results)
			r.Get("/progress", callbacks.Progress)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs and traces each request and feeds the HTTP metrics.
func requestLogger(m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			logger.Debug("API request started",
				logger.KeyRequestID, requestID,
				logger.KeyMethod, r.Method,
				logger.KeyPath, r.URL.Path,
				logger.KeyClientIP, r.RemoteAddr,
			)

			ctx, span := telemetry.StartAPISpan(r.Context(), r.Method, r.URL.Path, telemetry.ClientIP(r.RemoteAddr))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			span.SetAttributes(telemetry.HTTPRoute(route), telemetry.HTTPStatus(ww.Status()))
			if ww.Status() >= http.StatusInternalServerError {
				telemetry.RecordError(ctx, fmt.Errorf("HTTP %d", ww.Status()))
			}
			if m != nil {
				m.RecordHTTPRequest(r.Method, route, ww.Status(), duration)
			}

			logger.Info("API request completed",
				logger.KeyRequestID, requestID,
				logger.KeyMethod, r.Method,
				logger.KeyPath, r.URL.Path,
				logger.KeyStatus, ww.Status(),
				logger.KeyBytes, ww.BytesWritten(),
				logger.KeyDurationMs, duration.Milliseconds(),
			)
		})
	}
}
