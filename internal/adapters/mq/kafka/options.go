package kafka

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
)

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger for the handler.
func WithLogger(logger logger.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRequestIDGenerator sets the id used for requests that carry none.
func WithRequestIDGenerator(gen func() string) Option {
	return func(h *Handler) {
		if gen != nil {
			h.newID = gen
		}
	}
}
