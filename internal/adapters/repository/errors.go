package repository

import "errors"

// Sentinel kinds for artifact loading errors.
var (
	ErrArtifactMissing  = errors.New("artifact not found")
	ErrInvalidManifest  = errors.New("invalid manifest")
	ErrUnknownModelKind = errors.New("unknown model kind")
)
