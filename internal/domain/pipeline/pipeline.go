// Package pipeline runs one building through validation, feature
// derivation, preprocessing, inference and response assembly.
//
// A Pipeline is built once per model version. New checks that the feature
// engine and the four artifacts agree on names and column order, so a
// deployment mismatch fails at start-up rather than on the first request.
// After construction a Pipeline holds no mutable state and Run may be
// called from any number of goroutines.
package pipeline

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
)

// Pipeline is the prediction core bound to one artifact set.
type Pipeline struct {
	deriver    *features.Deriver
	preprocess *Preprocessor
	inference  *Inference
	info       artifacts.ModelInfo
	schema     artifacts.Schema
	observe    StageObserver
}

// New checks set against deriver and returns a ready pipeline. Every
// mismatch is reported as a configuration error.
func New(set artifacts.Set, deriver *features.Deriver, opts ...Option) (*Pipeline, error) {
	const op = "pipeline.New"
	if deriver == nil {
		return nil, apperr.Configuration(op, "feature deriver is nil")
	}
	if err := set.Check(); err != nil {
		return nil, err
	}
	if err := checkSchema(op, set.Schema, deriver.Names()); err != nil {
		return nil, err
	}

	scaled := set.Schema.ScaledColumns()
	if fitted := set.Scaler.FeatureNames(); len(fitted) > 0 && !slices.Equal(fitted, scaled) {
		return nil, apperr.Configuration(op, "scaler was fitted on %v, schema declares %v", fitted, scaled)
	}
	if n := set.Scaler.NumFeatures(); n != len(scaled) {
		return nil, apperr.Configuration(op, "scaler width %d, schema declares %d numeric and binary features", n, len(scaled))
	}
	if inputs := set.Encoder.InputFeatures(); !slices.Equal(inputs, set.Schema.Categorical) {
		return nil, apperr.Configuration(op, "encoder was fitted on %v, schema declares %v", inputs, set.Schema.Categorical)
	}

	p := &Pipeline{
		deriver:    deriver,
		preprocess: NewPreprocessor(set.Schema, set.Scaler, set.Encoder),
		inference:  NewInference(set.Model),
		info:       set.Info.WithDefaults(),
		schema:     set.Schema,
		observe:    func(string, time.Duration) {},
	}
	if want, got := set.Model.NumFeatures(), p.preprocess.Width(); want != got {
		return nil, apperr.Configuration(op, "model expects %d features, preprocessing yields %d", want, got)
	}
	if named, ok := set.Model.(artifacts.NamedRegressor); ok {
		aligned := append(append([]string(nil), scaled...), set.Encoder.OutputNames()...)
		if trained := named.FeatureNames(); len(trained) > 0 && !slices.Equal(trained, aligned) {
			return nil, apperr.Configuration(op, "model was trained on %v, preprocessing yields %v", trained, aligned)
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// checkSchema compares declared and derived names as sets and rejects
// duplicates.
func checkSchema(op string, schema artifacts.Schema, derived features.Names) error {
	seen := make(map[string]struct{})
	for _, n := range append(append(append([]string(nil), schema.Numeric...), schema.Binary...), schema.Categorical...) {
		if _, dup := seen[n]; dup {
			return apperr.Configuration(op, "feature %q is declared twice", n)
		}
		seen[n] = struct{}{}
	}

	missing, extra := diff(schema.ScaledColumns(), append(append([]string(nil), derived.Numeric...), derived.Binary...))
	if len(missing)+len(extra) > 0 {
		return apperr.Configuration(op, "numeric and binary features disagree: not derived [%s], not declared [%s]",
			strings.Join(missing, ", "), strings.Join(extra, ", "))
	}
	missing, extra = diff(schema.Categorical, derived.Categorical)
	if len(missing)+len(extra) > 0 {
		return apperr.Configuration(op, "categorical features disagree: not derived [%s], not declared [%s]",
			strings.Join(missing, ", "), strings.Join(extra, ", "))
	}
	return nil
}

// diff returns the declared names absent from derived and the derived
// names absent from declared, both sorted.
func diff(declared, derived []string) (missing, extra []string) {
	have := make(map[string]struct{}, len(derived))
	for _, n := range derived {
		have[n] = struct{}{}
	}
	want := make(map[string]struct{}, len(declared))
	for _, n := range declared {
		want[n] = struct{}{}
		if _, ok := have[n]; !ok {
			missing = append(missing, n)
		}
	}
	for _, n := range derived {
		if _, ok := want[n]; !ok {
			extra = append(extra, n)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}

// Info returns the model metadata.
func (p *Pipeline) Info() artifacts.ModelInfo { return p.info }

// Schema returns the feature schema the pipeline was built with.
func (p *Pipeline) Schema() artifacts.Schema { return p.schema }

// EncodedColumns returns the encoder's output column names.
func (p *Pipeline) EncodedColumns() []string { return p.preprocess.encoder.OutputNames() }

// Constants returns the derivation reference values.
func (p *Pipeline) Constants() features.Constants { return p.deriver.Constants() }

// Description summarises the model a pipeline serves.
type Description struct {
	Info           artifacts.ModelInfo
	Schema         artifacts.Schema
	EncodedColumns []string
	Width          int
	Constants      features.Constants
}

// Describe returns the model description.
func (p *Pipeline) Describe() Description {
	return Description{
		Info:           p.info,
		Schema:         p.schema,
		EncodedColumns: p.EncodedColumns(),
		Width:          p.preprocess.Width(),
		Constants:      p.Constants(),
	}
}

// Run validates in and predicts its consumption. Validation failures are
// returned before any derivation work.
func (p *Pipeline) Run(in building.Input) (Result, error) {
	start := time.Now()
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	start = p.lap(StageValidate, start)

	v := p.deriver.Derive(in)
	start = p.lap(StageDerive, start)

	row, err := p.preprocess.Transform(v)
	if err != nil {
		return Result{}, err
	}
	start = p.lap(StagePreprocess, start)

	kbtu, err := p.inference.Predict(row)
	if err != nil {
		return Result{}, err
	}
	start = p.lap(StageInference, start)

	res := Assemble(kbtu, v, p.info)
	p.lap(StageAssemble, start)
	return res, nil
}

func (p *Pipeline) lap(stage string, since time.Time) time.Time {
	now := time.Now()
	p.observe(stage, now.Sub(since))
	return now
}
