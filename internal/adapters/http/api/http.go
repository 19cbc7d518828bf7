// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/queue"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs one building through the pipeline.
	Predict(ctx context.Context, in building.Input) (pipeline.Result, error)

	// PredictBatch predicts every input on the worker pool, in input order.
	PredictBatch(ctx context.Context, inputs []building.Input) ([]queue.Outcome, error)

	// Model describes the loaded model.
	Model() (pipeline.Description, error)

	// Ready reports whether artifacts are loaded.
	Ready() bool

	// MaxBatchSize returns the largest accepted batch.
	MaxBatchSize() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	modelHandler   *ModelHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		modelHandler:   NewModelHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/model", MetricsMiddleware(RequestIDMiddleware(s.modelHandler.HandleModel), "model"))
	mux.HandleFunc("/predict", MetricsMiddleware(RequestIDMiddleware(s.predictHandler.HandlePredict), "predict"))
	mux.HandleFunc("/predict/batch", MetricsMiddleware(RequestIDMiddleware(s.predictHandler.HandleBatch), "predict_batch"))
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Status    string        `json:"status"`
	RequestID string        `json:"request_id,omitempty"`
	Error     apperr.Detail `json:"error"`
}
