package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"go.yaml.in/yaml/v3"
)

// Bundle holds exported artifact parameters in their on-disk form.
// Exactly one of Linear and Trees is set, matching Manifest.Kind.
type Bundle struct {
	Manifest Manifest
	Schema   artifacts.Schema
	Scaler   artifacts.ScalerParams
	Encoder  artifacts.EncoderParams
	Linear   *artifacts.LinearParams
	Trees    *artifacts.TreeParams
}

// Save writes b into dir using the manifest's file names.
func Save(dir string, b Bundle) error {
	var model any
	switch {
	case b.Manifest.Kind == artifacts.KindLinear && b.Linear != nil:
		model = b.Linear
	case b.Manifest.Kind == artifacts.KindXGBoostJSON && b.Trees != nil:
		model = b.Trees
	default:
		return fmt.Errorf("%w: no %q model parameters in bundle", ErrUnknownModelKind, b.Manifest.Kind)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	files := b.Manifest.Files.withDefaults()

	writes := []struct {
		name string
		v    any
		yaml bool
	}{
		{ManifestFile, b.Manifest, true},
		{files.Schema, b.Schema, true},
		{files.Scaler, b.Scaler, false},
		{files.Encoder, b.Encoder, false},
		{files.Model, model, false},
	}
	for _, w := range writes {
		var (
			raw []byte
			err error
		)
		if w.yaml {
			raw, err = yaml.Marshal(w.v)
		} else {
			raw, err = json.MarshalIndent(w.v, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", w.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, w.name), raw, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	return nil
}
