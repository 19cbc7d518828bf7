package kafka

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
)

// Request is the payload consumed from the request topic.
type Request struct {
	RequestID string          `json:"request_id"`
	Building  *building.Input `json:"building"`
}

// Reply is the payload produced to the response topic, keyed by request id.
type Reply struct {
	RequestID string           `json:"request_id"`
	Status    string           `json:"status"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     *apperr.Detail   `json:"error,omitempty"`
}
