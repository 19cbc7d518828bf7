package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/queue"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
)

// PredictDependencies defines the interface for prediction operations.
type PredictDependencies interface {
	Predict(ctx context.Context, in building.Input) (pipeline.Result, error)
	PredictBatch(ctx context.Context, inputs []building.Input) ([]queue.Outcome, error)
	MaxBatchSize() int
}

// PredictHandler handles single and batch prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var in building.Input
	if err := decodeBody(w, r, maxPredictBody, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.deps.Predict(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// batchRequest is the body of POST /predict/batch.
type batchRequest struct {
	Buildings []building.Input `json:"buildings"`
}

// batchItem is one answered building of a batch.
type batchItem struct {
	Index  int              `json:"index"`
	Status string           `json:"status"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  *apperr.Detail   `json:"error,omitempty"`
}

// batchResponse is the body of a processed batch. Items keep input order.
type batchResponse struct {
	Status    string      `json:"status"`
	RequestID string      `json:"request_id,omitempty"`
	Count     int         `json:"count"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []batchItem `json:"results"`
}

// HandleBatch handles POST /predict/batch requests.
func (h *PredictHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req batchRequest
	if err := decodeBody(w, r, maxBatchBody, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if n, limit := len(req.Buildings), h.deps.MaxBatchSize(); limit > 0 && n > limit {
		writeError(w, r, fmt.Errorf("%w: %d buildings, limit %d", ErrBadRequest, n, limit))
		return
	}

	outcomes, err := h.deps.PredictBatch(r.Context(), req.Buildings)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := batchResponse{
		Status:    pipeline.StatusSuccess,
		RequestID: logger.RequestID(r.Context()),
		Count:     len(outcomes),
		Results:   make([]batchItem, len(outcomes)),
	}
	for i, o := range outcomes {
		item := batchItem{Index: o.Index, Status: pipeline.StatusSuccess}
		if o.Err != nil {
			detail := apperr.DetailOf(o.Err)
			item.Status = apperr.Status(o.Err)
			item.Error = &detail
			resp.Failed++
		} else {
			res := o.Result
			item.Result = &res
			resp.Succeeded++
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}
