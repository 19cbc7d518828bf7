package api

import (
	"errors"
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/queue"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
)

// ErrBadRequest marks a body the handlers could not accept.
var ErrBadRequest = errors.New("bad request")

// Status labels for transport-level failures.
const (
	statusBackpressure = "backpressure"
	statusTimeout      = "timeout"
)

// classify maps err to an HTTP status code and a response status label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, queue.ErrEmptyBatch),
		errors.Is(err, queue.ErrBatchTooLarge):
		return http.StatusBadRequest, apperr.StatusBadRequest
	case errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, statusBackpressure
	case errors.Is(err, queue.ErrTimeout):
		return http.StatusGatewayTimeout, statusTimeout
	}

	switch apperr.Kind(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, apperr.StatusValidation
	case apperr.KindConfiguration:
		return http.StatusServiceUnavailable, apperr.StatusConfiguration
	case apperr.KindModel:
		return http.StatusInternalServerError, apperr.StatusModel
	default:
		return http.StatusInternalServerError, apperr.StatusInternal
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)

	detail := apperr.DetailOf(err)
	if status == apperr.StatusBadRequest || status == statusBackpressure || status == statusTimeout {
		detail = apperr.Detail{Message: err.Error()}
	}

	writeJSON(w, code, errorResponse{
		Status:    status,
		RequestID: logger.RequestID(r.Context()),
		Error:     detail,
	})
}
