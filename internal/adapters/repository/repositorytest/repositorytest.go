// Package repositorytest writes small artifact directories for tests.
package repositorytest

import (
	"testing"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline/pipelinetest"
)

// Version is the manifest version of the fixture bundle.
const Version = "2016.1-test"

// Bundle returns the linear fixture of pipelinetest in exported form. The
// scaler is an identity scaler, so the model predicts
// pipelinetest.KBTUPerSqFt * PropertyGFATotal.
func Bundle() repository.Bundle {
	schema := pipelinetest.Schema()
	cols := schema.ScaledColumns()

	mean := make([]float64, len(cols))
	scale := make([]float64, len(cols))
	for i := range scale {
		scale[i] = 1
	}

	enc := pipelinetest.EncoderParams()
	width := len(cols)
	for _, c := range enc.Categories {
		width += len(c)
	}
	linear := pipelinetest.LinearParams(width)

	return repository.Bundle{
		Manifest: repository.Manifest{
			ModelInfo: artifacts.ModelInfo{
				Name:    "energy-consumption",
				Version: Version,
				Kind:    artifacts.KindLinear,
			},
		},
		Schema:  schema,
		Scaler:  artifacts.ScalerParams{FeatureNamesIn: cols, Mean: mean, Scale: scale},
		Encoder: enc,
		Linear:  &linear,
	}
}

// Dir saves Bundle into a fresh temporary directory and returns its path.
func Dir(tb testing.TB) string {
	tb.Helper()
	dir := tb.TempDir()
	if err := repository.Save(dir, Bundle()); err != nil {
		tb.Fatalf("save fixture artifacts: %v", err)
	}
	return dir
}
