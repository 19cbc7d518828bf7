package pipeline

import (
	"math"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
)

// Inference applies the regression model to aligned rows.
type Inference struct {
	model artifacts.Regressor
}

// NewInference wraps model.
func NewInference(model artifacts.Regressor) *Inference {
	return &Inference{model: model}
}

// Predict returns the estimated consumption in kBTU. Any failure is a
// model error: the input has already been validated, so a mismatch here
// means the deployed artifacts disagree.
func (i *Inference) Predict(row []float64) (float64, error) {
	const op = "pipeline.Predict"
	if want := i.model.NumFeatures(); len(row) != want {
		return 0, apperr.Modelf(op, "aligned row has %d columns, model expects %d", len(row), want)
	}
	y, err := i.model.Predict(row)
	if err != nil {
		return 0, apperr.Model(op, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, apperr.Modelf(op, "model returned %v", y)
	}
	return y, nil
}
