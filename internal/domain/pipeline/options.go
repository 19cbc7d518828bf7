package pipeline

import "time"

// Stage names reported to the observer.
const (
	StageValidate   = "validate"
	StageDerive     = "derive"
	StagePreprocess = "preprocess"
	StageInference  = "inference"
	StageAssemble   = "assemble"
)

// StageObserver receives the duration of each pipeline stage.
type StageObserver func(stage string, d time.Duration)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStageObserver reports per-stage durations to fn.
func WithStageObserver(fn StageObserver) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.observe = fn
		}
	}
}
