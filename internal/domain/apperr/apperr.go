// Package apperr defines the error taxonomy shared by the prediction pipeline.
//
// Error taxonomy
//
//	ValidationError    – a raw input field violates its declared bound.
//	                     Caused by the caller; rejected before any derivation.
//	ErrConfiguration   – the loaded artifacts disagree with the feature engine
//	                     (missing or mismatched feature names). Operator-caused,
//	                     fatal for the model version.
//	ErrModel           – an artifact failed at request time (width mismatch,
//	                     transform failure). Never retried.
//
// Everything else is a plain Go error wrapped with fmt.Errorf("context: %w", err).
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is to classify.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("configuration error")
	ErrModel         = errors.New("model error")
)

// Kind labels used in responses, logs and metrics.
const (
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindModel         = "model"
	KindInternal      = "internal"
)

// ValidationError reports the input field that violated its bound.
type ValidationError struct {
	Field string
	Bound string
	Value any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: must be %s", e.Field, e.Bound)
	}
	return fmt.Sprintf("%s: must be %s, got %v", e.Field, e.Bound, e.Value)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid creates a ValidationError.
func Invalid(field, bound string, value any) error {
	return &ValidationError{Field: field, Bound: bound, Value: value}
}

// Configuration creates an error of kind ErrConfiguration.
func Configuration(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrConfiguration, fmt.Sprintf(format, args...))
}

// ConfigurationCause wraps err as an error of kind ErrConfiguration.
func ConfigurationCause(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
}

// Model wraps err as an error of kind ErrModel.
func Model(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrModel, err)
}

// Modelf creates an error of kind ErrModel from a message.
func Modelf(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrModel, fmt.Sprintf(format, args...))
}

// AsValidation reports whether err is (or wraps) a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

// Kind classifies err into one of the Kind* labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrModel):
		return KindModel
	default:
		return KindInternal
	}
}

// Status labels carried by error responses.
const (
	StatusValidation    = "validation_error"
	StatusConfiguration = "configuration_error"
	StatusModel         = "model_error"
	StatusInternal      = "internal_error"
	StatusBadRequest    = "bad_request"
)

// Status maps err to its response status label.
func Status(err error) string {
	switch Kind(err) {
	case KindValidation:
		return StatusValidation
	case KindConfiguration:
		return StatusConfiguration
	case KindModel:
		return StatusModel
	default:
		return StatusInternal
	}
}

// Detail is the client-facing description of an error. Only validation
// errors expose their message; the others are summarised.
type Detail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Bound   string `json:"bound,omitempty"`
	Value   any    `json:"value,omitempty"`
}

// DetailOf builds the Detail for err.
func DetailOf(err error) Detail {
	if v, ok := AsValidation(err); ok {
		return Detail{Message: v.Error(), Field: v.Field, Bound: v.Bound, Value: v.Value}
	}
	switch Kind(err) {
	case KindConfiguration:
		return Detail{Message: "model artifacts are not available or not consistent"}
	case KindModel:
		return Detail{Message: "prediction failed"}
	default:
		return Detail{Message: "internal error"}
	}
}
