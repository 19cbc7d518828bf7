// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports whether predictions can be served.
type ReadinessProvider interface {
	Ready() bool
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	readiness ReadinessProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(readiness ReadinessProvider) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

// HandleHealth handles GET /healthz requests by exposing the Prometheus
// metrics of the custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

type readyResponse struct {
	Status string `json:"status"`
}

// HandleReady handles GET /readyz requests: 200 once artifacts are loaded,
// 503 otherwise.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.readiness == nil || !h.readiness.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Status: "ready"})
}
