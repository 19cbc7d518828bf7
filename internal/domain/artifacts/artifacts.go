// Package artifacts defines the trained, read-only objects the prediction
// pipeline consumes and ships implementations for the formats we export
// from training.
//
// Every implementation is immutable after construction and safe for
// concurrent use by any number of goroutines.
package artifacts

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
)

// Regressor maps one aligned feature row to a consumption estimate.
type Regressor interface {
	NumFeatures() int
	Predict(row []float64) (float64, error)
}

// NamedRegressor is a Regressor that remembers its training column order.
type NamedRegressor interface {
	Regressor
	FeatureNames() []string
}

// Scaler transforms the numeric and binary block.
type Scaler interface {
	// FeatureNames returns the fitted column order. It may be empty when
	// the scaler was fitted on an unnamed matrix.
	FeatureNames() []string
	NumFeatures() int
	Transform(row []float64) ([]float64, error)
}

// Encoder expands categorical values into indicator columns.
type Encoder interface {
	InputFeatures() []string
	OutputNames() []string
	Transform(row []string) ([]float64, error)
}

// Schema is the authoritative feature ordering shared by the scaler,
// the encoder and the model.
type Schema struct {
	Numeric     []string `json:"numeric" yaml:"numeric"`
	Binary      []string `json:"binary" yaml:"binary"`
	Categorical []string `json:"categorical" yaml:"categorical"`
}

// ScaledColumns returns numeric followed by binary names, the order the
// scaler was fitted on.
func (s Schema) ScaledColumns() []string {
	out := make([]string, 0, len(s.Numeric)+len(s.Binary))
	out = append(out, s.Numeric...)
	return append(out, s.Binary...)
}

// Model kinds understood by the registry.
const (
	KindXGBoostJSON = "xgboost_json"
	KindLinear      = "linear"
)

// ModelInfo describes the trained model. Quality figures come from the
// offline evaluation and are never recomputed.
type ModelInfo struct {
	Name    string  `json:"name" yaml:"name"`
	Version string  `json:"version" yaml:"version"`
	Kind    string  `json:"kind" yaml:"model_kind"`
	R2      float64 `json:"r2_score" yaml:"r2_score"`
	MAE     float64 `json:"mae_kbtu" yaml:"mae_kbtu"`
	Note    string  `json:"note" yaml:"note"`
}

// Offline evaluation of the shipped model.
const (
	DefaultR2   = 0.677
	DefaultMAE  = 3237413.0
	DefaultNote = "Le modèle explique 67.7% de la variance"
)

// WithDefaults fills unset quality figures with the shipped model's values.
func (m ModelInfo) WithDefaults() ModelInfo {
	if m.R2 == 0 {
		m.R2 = DefaultR2
	}
	if m.MAE == 0 {
		m.MAE = DefaultMAE
	}
	if m.Note == "" {
		m.Note = DefaultNote
	}
	return m
}

// Set bundles the four artifacts of one model version.
type Set struct {
	Model   Regressor
	Scaler  Scaler
	Encoder Encoder
	Schema  Schema
	Info    ModelInfo
}

// Check reports a configuration error when an artifact is missing.
func (s Set) Check() error {
	const op = "artifacts.Check"
	switch {
	case s.Model == nil:
		return apperr.Configuration(op, "regression_model is missing")
	case s.Scaler == nil:
		return apperr.Configuration(op, "numeric_scaler is missing")
	case s.Encoder == nil:
		return apperr.Configuration(op, "categorical_encoder is missing")
	case len(s.Schema.Numeric)+len(s.Schema.Binary) == 0 && len(s.Schema.Categorical) == 0:
		return apperr.Configuration(op, "feature_schema is missing or empty")
	}
	return nil
}
