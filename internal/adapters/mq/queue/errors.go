package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrStopped answers jobs that were dequeued after shutdown began.
	ErrStopped = errors.New("worker stopped")
	// ErrFull is returned when a job cannot be enqueued.
	ErrFull = errors.New("prediction queue is full")
	// ErrTimeout is returned when a batch is not fully answered in time.
	ErrTimeout = errors.New("batch timed out")
	// ErrEmptyBatch and ErrBatchTooLarge reject a batch before enqueueing.
	ErrEmptyBatch    = errors.New("batch is empty")
	ErrBatchTooLarge = errors.New("batch too large")
)
