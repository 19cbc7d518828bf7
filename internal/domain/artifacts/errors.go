package artifacts

import "errors"

var (
	// ErrWidth is returned when a row does not have the fitted width.
	ErrWidth = errors.New("feature width mismatch")

	// ErrUnknownCategory is returned by an encoder configured to reject
	// categories it was not fitted on.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidArtifact is returned when exported parameters are inconsistent.
	ErrInvalidArtifact = errors.New("invalid artifact")
)
