package artifacts

import (
	"fmt"
)

// Unknown-category policies.
const (
	HandleUnknownIgnore = "ignore"
	HandleUnknownError  = "error"
)

// DropFirst drops the first category of every feature.
const DropFirst = "first"

// EncoderParams is the exported state of a fitted sklearn OneHotEncoder.
type EncoderParams struct {
	FeatureNamesIn []string   `json:"feature_names_in"`
	Categories     [][]string `json:"categories"`
	HandleUnknown  string     `json:"handle_unknown"`
	Drop           string     `json:"drop"`
}

// OneHotEncoder emits one indicator column per fitted category, feature by
// feature, in fitted order.
type OneHotEncoder struct {
	inputs  []string
	outputs []string
	// index[i][category] is the output column of category for feature i,
	// or -1 for a dropped category.
	index   []map[string]int
	strict  bool
}

// NewOneHotEncoder validates p and builds an encoder. handle_unknown
// defaults to ignore.
func NewOneHotEncoder(p EncoderParams) (*OneHotEncoder, error) {
	if len(p.FeatureNamesIn) == 0 {
		return nil, fmt.Errorf("%w: encoder has no input features", ErrInvalidArtifact)
	}
	if len(p.Categories) != len(p.FeatureNamesIn) {
		return nil, fmt.Errorf("%w: encoder has %d category lists for %d features",
			ErrInvalidArtifact, len(p.Categories), len(p.FeatureNamesIn))
	}

	e := &OneHotEncoder{
		inputs: append([]string(nil), p.FeatureNamesIn...),
		index:  make([]map[string]int, len(p.FeatureNamesIn)),
	}
	switch p.HandleUnknown {
	case "", HandleUnknownIgnore:
	case HandleUnknownError:
		e.strict = true
	default:
		return nil, fmt.Errorf("%w: unsupported handle_unknown %q", ErrInvalidArtifact, p.HandleUnknown)
	}
	if p.Drop != "" && p.Drop != DropFirst {
		return nil, fmt.Errorf("%w: unsupported drop %q", ErrInvalidArtifact, p.Drop)
	}

	for i, feature := range p.FeatureNamesIn {
		cats := p.Categories[i]
		if len(cats) == 0 {
			return nil, fmt.Errorf("%w: feature %s has no categories", ErrInvalidArtifact, feature)
		}
		e.index[i] = make(map[string]int, len(cats))
		for j, c := range cats {
			if _, dup := e.index[i][c]; dup {
				return nil, fmt.Errorf("%w: feature %s repeats category %q", ErrInvalidArtifact, feature, c)
			}
			if j == 0 && p.Drop == DropFirst {
				e.index[i][c] = -1
				continue
			}
			e.index[i][c] = len(e.outputs)
			e.outputs = append(e.outputs, feature+"_"+c)
		}
	}
	return e, nil
}

func (e *OneHotEncoder) InputFeatures() []string { return append([]string(nil), e.inputs...) }

// OutputNames returns the encoded column names, "<feature>_<category>".
func (e *OneHotEncoder) OutputNames() []string { return append([]string(nil), e.outputs...) }

// Transform encodes one row of categorical values.
func (e *OneHotEncoder) Transform(row []string) ([]float64, error) {
	if len(row) != len(e.inputs) {
		return nil, fmt.Errorf("%w: encoder got %d columns, fitted on %d", ErrWidth, len(row), len(e.inputs))
	}
	out := make([]float64, len(e.outputs))
	for i, v := range row {
		col, ok := e.index[i][v]
		if !ok {
			if e.strict {
				return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, e.inputs[i], v)
			}
			continue
		}
		if col >= 0 {
			out[col] = 1
		}
	}
	return out, nil
}
