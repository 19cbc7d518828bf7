// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment on top of the defaults.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ArtifactDir is the directory holding the model artifacts.
	ArtifactDir string `koanf:"artifact_dir"`

	// ReferenceYear, CenterLat and CenterLon feed feature derivation.
	ReferenceYear int     `koanf:"reference_year"`
	CenterLat     float64 `koanf:"center_lat"`
	CenterLon     float64 `koanf:"center_lon"`

	// WorkerCount sets the number of batch prediction workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchSize caps the number of buildings in POST /predict/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// RequestTimeoutMS bounds the wait for a batch.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Kafka transport. Brokers is a comma separated list.
	KafkaEnabled       bool   `koanf:"kafka_enabled"`
	KafkaBrokers       string `koanf:"kafka_brokers"`
	KafkaGroupID       string `koanf:"kafka_group_id"`
	KafkaRequestTopic  string `koanf:"kafka_request_topic"`
	KafkaResponseTopic string `koanf:"kafka_response_topic"`
}

// New creates a Config holding the defaults.
func New() *Config {
	c := features.DefaultConstants()
	return &Config{
		LogLevel:           "info",
		LogFormat:          "json",
		Addr:               ":8080",
		ArtifactDir:        "artifacts",
		ReferenceYear:      c.ReferenceYear,
		CenterLat:          c.CenterLat,
		CenterLon:          c.CenterLon,
		WorkerCount:        runtime.NumCPU() * 2,
		QueueSize:          10_000,
		MaxBatchSize:       1_000,
		RequestTimeoutMS:   5_000,
		KafkaGroupID:       "energy-api",
		KafkaRequestTopic:  "energy.predict.requests",
		KafkaResponseTopic: "energy.predict.responses",
	}
}

// Constants returns the feature derivation constants.
func (c *Config) Constants() features.Constants {
	return features.Constants{
		ReferenceYear: c.ReferenceYear,
		CenterLat:     c.CenterLat,
		CenterLon:     c.CenterLon,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Brokers splits KafkaBrokers, dropping empty entries.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ArtifactDir == "":
		return fmt.Errorf("%w: artifact_dir must not be empty", ErrInvalidConfig)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive, got %d", ErrInvalidConfig, c.MaxBatchSize)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < 0:
		return fmt.Errorf("%w: queue_size must not be negative, got %d", ErrInvalidConfig, c.QueueSize)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative, got %d", ErrInvalidConfig, c.RequestTimeoutMS)
	case c.ReferenceYear < 1900 || c.ReferenceYear > 2100:
		return fmt.Errorf("%w: reference_year must be in [1900, 2100], got %d", ErrInvalidConfig, c.ReferenceYear)
	case c.LogFormat != "json" && c.LogFormat != "text":
		return fmt.Errorf("%w: log_format must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.KafkaEnabled {
		switch {
		case len(c.Brokers()) == 0:
			return fmt.Errorf("%w: kafka_brokers must not be empty when kafka is enabled", ErrInvalidConfig)
		case c.KafkaRequestTopic == "" || c.KafkaResponseTopic == "":
			return fmt.Errorf("%w: kafka topics must not be empty when kafka is enabled", ErrInvalidConfig)
		}
	}
	return nil
}
