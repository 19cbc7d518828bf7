package artifacts

import (
	"fmt"
)

// ScalerParams is the exported state of a fitted sklearn StandardScaler.
type ScalerParams struct {
	FeatureNamesIn []string  `json:"feature_names_in"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
	WithMean       *bool     `json:"with_mean"`
	WithStd        *bool     `json:"with_std"`
}

// StandardScaler computes (x - mean) / scale per column.
type StandardScaler struct {
	names []string
	mean  []float64
	scale []float64
}

// NewStandardScaler validates p and builds a scaler. Absent flags default
// to true. A zero scale is treated as 1.
func NewStandardScaler(p ScalerParams) (*StandardScaler, error) {
	width := max(len(p.FeatureNamesIn), len(p.Mean), len(p.Scale))
	if width == 0 {
		return nil, fmt.Errorf("%w: scaler has no columns", ErrInvalidArtifact)
	}
	for label, n := range map[string]int{"feature_names_in": len(p.FeatureNamesIn), "mean": len(p.Mean), "scale": len(p.Scale)} {
		if n != 0 && n != width {
			return nil, fmt.Errorf("%w: scaler %s has %d entries, want %d", ErrInvalidArtifact, label, n, width)
		}
	}

	s := &StandardScaler{
		names: append([]string(nil), p.FeatureNamesIn...),
		mean:  make([]float64, width),
		scale: make([]float64, width),
	}
	withMean := p.WithMean == nil || *p.WithMean
	withStd := p.WithStd == nil || *p.WithStd
	for i := 0; i < width; i++ {
		if withMean && len(p.Mean) > 0 {
			s.mean[i] = p.Mean[i]
		}
		s.scale[i] = 1
		if withStd && len(p.Scale) > 0 && p.Scale[i] != 0 {
			s.scale[i] = p.Scale[i]
		}
	}
	return s, nil
}

// IdentityScaler returns a scaler fitted on names that leaves values unchanged.
func IdentityScaler(names []string) *StandardScaler {
	s := &StandardScaler{
		names: append([]string(nil), names...),
		mean:  make([]float64, len(names)),
		scale: make([]float64, len(names)),
	}
	for i := range s.scale {
		s.scale[i] = 1
	}
	return s
}

func (s *StandardScaler) FeatureNames() []string { return append([]string(nil), s.names...) }

func (s *StandardScaler) NumFeatures() int { return len(s.scale) }

// Transform returns a new scaled row.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.scale) {
		return nil, fmt.Errorf("%w: scaler got %d columns, fitted on %d", ErrWidth, len(row), len(s.scale))
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = (x - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
