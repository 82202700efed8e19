package handlers

import (
	"context"
	"net/http"
	"time"
)

// Checker reports whether a backend is reachable. prefs.Store satisfies it.
type Checker interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler handles the unauthenticated health endpoints.
type HealthHandler struct {
	store      Checker
	dispatcher Dispatcher
}

// NewHealthHandler creates a health handler. Either argument may be nil, in
// which case readiness reports unhealthy.
func NewHealthHandler(store Checker, dispatcher Dispatcher) *HealthHandler {
	return &HealthHandler{store: store, dispatcher: dispatcher}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthy(map[string]string{
		"service": "nsmd",
	}))
}

// Readiness handles GET /health/ready. The server is ready once the
// dispatcher is wired and the preference store answers its healthcheck.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthy("dispatcher not initialized"))
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthy("store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.store.Healthcheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthy("store unhealthy: "+err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, healthy(map[string]any{
		"locations":     h.dispatcher.Registry().Len(),
		"in_flight":     len(h.dispatcher.InFlight()),
		"store_latency": time.Since(start).String(),
	}))
}
