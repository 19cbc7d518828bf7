package pipeline

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
)

// Preprocessor turns a named feature vector into the aligned row the model
// was trained on: the scaled numeric and binary block in schema order,
// followed by the encoder's indicator columns in encoder order.
type Preprocessor struct {
	scaled      []string
	categorical []string
	scaler      artifacts.Scaler
	encoder     artifacts.Encoder
}

// NewPreprocessor binds the schema ordering to the two fitted transforms.
func NewPreprocessor(schema artifacts.Schema, scaler artifacts.Scaler, encoder artifacts.Encoder) *Preprocessor {
	return &Preprocessor{
		scaled:      schema.ScaledColumns(),
		categorical: append([]string(nil), schema.Categorical...),
		scaler:      scaler,
		encoder:     encoder,
	}
}

// Width returns the aligned row width.
func (p *Preprocessor) Width() int {
	return p.scaler.NumFeatures() + len(p.encoder.OutputNames())
}

// Transform builds the aligned row for v.
func (p *Preprocessor) Transform(v features.Vector) ([]float64, error) {
	const op = "pipeline.Preprocess"

	numeric := make([]float64, len(p.scaled))
	for i, name := range p.scaled {
		x, ok := v.Float(name)
		if !ok {
			return nil, apperr.Configuration(op, "declared feature %q was not derived", name)
		}
		numeric[i] = x
	}
	scaled, err := p.scaler.Transform(numeric)
	if err != nil {
		return nil, apperr.Model(op, err)
	}

	categorical := make([]string, len(p.categorical))
	for i, name := range p.categorical {
		s, ok := v.Categorical[name]
		if !ok {
			return nil, apperr.Configuration(op, "declared feature %q was not derived", name)
		}
		categorical[i] = s
	}
	encoded, err := p.encoder.Transform(categorical)
	if err != nil {
		return nil, apperr.Model(op, err)
	}

	row := make([]float64, 0, len(scaled)+len(encoded))
	row = append(row, scaled...)
	return append(row, encoded...), nil
}
