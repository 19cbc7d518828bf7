// Package repository loads trained artifact sets from storage.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
	"go.yaml.in/yaml/v3"
)

// Default artifact file names inside a model directory.
const (
	ManifestFile = "manifest.yaml"
	SchemaFile   = "feature_schema.yaml"
	ScalerFile   = "numeric_scaler.json"
	EncoderFile  = "categorical_encoder.json"
	ModelFile    = "regression_model.json"
)

// Files names the artifact files of one model version.
type Files struct {
	Schema  string `yaml:"schema,omitempty"`
	Scaler  string `yaml:"scaler,omitempty"`
	Encoder string `yaml:"encoder,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

func (f Files) withDefaults() Files {
	if f.Schema == "" {
		f.Schema = SchemaFile
	}
	if f.Scaler == "" {
		f.Scaler = ScalerFile
	}
	if f.Encoder == "" {
		f.Encoder = EncoderFile
	}
	if f.Model == "" {
		f.Model = ModelFile
	}
	return f
}

// Manifest describes a model directory.
type Manifest struct {
	artifacts.ModelInfo `yaml:",inline"`

	// BaseScore is required when the model file is a bare XGBoost tree
	// dump, which does not carry the global bias.
	BaseScore *float64 `yaml:"base_score,omitempty"`
	Files     Files    `yaml:"files,omitempty"`
}

// Store provides the artifact set of the deployed model.
type Store interface {
	// Load reads and validates every artifact. Any missing or malformed
	// artifact is a configuration error.
	Load(ctx context.Context) (artifacts.Set, error)
}

// FileStore reads artifacts from a directory.
type FileStore struct {
	fsys     fs.FS
	manifest string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		fsys:     os.DirFS(dir),
		manifest: ManifestFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (artifacts.Set, error) {
	const op = "repository.Load"
	start := time.Now()

	m, err := s.Manifest()
	if err != nil {
		return artifacts.Set{}, err
	}
	files := m.Files.withDefaults()

	var schema artifacts.Schema
	if err := s.decodeYAML(ctx, files.Schema, &schema); err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, err)
	}

	var sp artifacts.ScalerParams
	if err := s.decodeJSON(ctx, files.Scaler, &sp); err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, err)
	}
	scaler, err := artifacts.NewStandardScaler(sp)
	if err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, fmt.Errorf("%s: %w", files.Scaler, err))
	}

	var ep artifacts.EncoderParams
	if err := s.decodeJSON(ctx, files.Encoder, &ep); err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, err)
	}
	encoder, err := artifacts.NewOneHotEncoder(ep)
	if err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, fmt.Errorf("%s: %w", files.Encoder, err))
	}

	model, err := s.loadModel(ctx, m, files.Model, scaler.NumFeatures()+len(encoder.OutputNames()))
	if err != nil {
		return artifacts.Set{}, apperr.ConfigurationCause(op, err)
	}

	set := artifacts.Set{
		Model:   model,
		Scaler:  scaler,
		Encoder: encoder,
		Schema:  schema,
		Info:    m.ModelInfo.WithDefaults(),
	}
	if err := set.Check(); err != nil {
		return artifacts.Set{}, err
	}

	metrics.RecordArtifactLoad(time.Since(start))
	return set, nil
}

// Manifest reads and validates the manifest alone.
func (s *FileStore) Manifest() (Manifest, error) {
	const op = "repository.Manifest"

	var m Manifest
	if err := s.decodeYAML(context.Background(), s.manifest, &m); err != nil {
		return Manifest{}, apperr.ConfigurationCause(op, err)
	}
	switch {
	case m.Name == "":
		return Manifest{}, apperr.ConfigurationCause(op, fmt.Errorf("%w: name is required", ErrInvalidManifest))
	case m.Version == "":
		return Manifest{}, apperr.ConfigurationCause(op, fmt.Errorf("%w: version is required", ErrInvalidManifest))
	case m.Kind != artifacts.KindXGBoostJSON && m.Kind != artifacts.KindLinear:
		return Manifest{}, apperr.ConfigurationCause(op, fmt.Errorf("%w: %q", ErrUnknownModelKind, m.Kind))
	}
	return m, nil
}

func (s *FileStore) loadModel(ctx context.Context, m Manifest, name string, width int) (artifacts.Regressor, error) {
	raw, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}

	switch m.Kind {
	case artifacts.KindLinear:
		var p artifacts.LinearParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		model, err := artifacts.NewLinearModel(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return model, nil

	default:
		var p artifacts.TreeParams
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			// Bare booster dump: a list of trees without header.
			if m.BaseScore == nil {
				return nil, fmt.Errorf("%w: base_score is required for a bare tree dump", ErrInvalidManifest)
			}
			if err := json.Unmarshal(trimmed, &p.Trees); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		} else if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if m.BaseScore != nil {
			p.BaseScore = *m.BaseScore
		}
		if p.NumFeature == 0 && len(p.FeatureNames) == 0 {
			p.NumFeature = width
		}
		model, err := artifacts.NewTreeEnsemble(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return model, nil
	}
}

func (s *FileStore) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

func (s *FileStore) decodeYAML(ctx context.Context, name string, into any) error {
	raw, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *FileStore) decodeJSON(ctx context.Context, name string, into any) error {
	raw, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
