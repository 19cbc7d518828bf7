package api

import (
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
)

// ModelDependencies defines the interface for model metadata.
type ModelDependencies interface {
	Model() (pipeline.Description, error)
}

// ModelHandler handles model metadata requests.
type ModelHandler struct {
	deps ModelDependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps ModelDependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

type modelSchema struct {
	Numeric     []string `json:"numeric"`
	Binary      []string `json:"binary"`
	Categorical []string `json:"categorical"`
}

type modelConstants struct {
	ReferenceYear int     `json:"reference_year"`
	CenterLat     float64 `json:"center_lat"`
	CenterLon     float64 `json:"center_lon"`
}

type modelResponse struct {
	Name           string               `json:"name"`
	Version        string               `json:"version"`
	Kind           string               `json:"kind"`
	Performance    pipeline.Performance `json:"model_performance"`
	Schema         modelSchema          `json:"schema"`
	EncodedColumns []string             `json:"encoded_columns"`
	NumFeatures    int                  `json:"num_features"`
	Constants      modelConstants       `json:"constants"`
}

// HandleModel handles GET /model requests.
func (h *ModelHandler) HandleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	d, err := h.deps.Model()
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, modelResponse{
		Name:    d.Info.Name,
		Version: d.Info.Version,
		Kind:    d.Info.Kind,
		Performance: pipeline.Performance{
			R2:   d.Info.R2,
			MAE:  d.Info.MAE,
			Note: d.Info.Note,
		},
		Schema: modelSchema{
			Numeric:     d.Schema.Numeric,
			Binary:      d.Schema.Binary,
			Categorical: d.Schema.Categorical,
		},
		EncodedColumns: d.EncodedColumns,
		NumFeatures:    d.Width,
		Constants: modelConstants{
			ReferenceYear: d.Constants.ReferenceYear,
			CenterLat:     d.Constants.CenterLat,
			CenterLon:     d.Constants.CenterLon,
		},
	})
}
