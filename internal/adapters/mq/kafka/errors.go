package kafka

import "errors"

var (
	// ErrNoBrokers is returned when the consumer is configured without brokers.
	ErrNoBrokers = errors.New("no kafka brokers configured")

	// ErrNoTopic is returned when a request or response topic is missing.
	ErrNoTopic = errors.New("kafka topic not configured")
)
