// Package loadgen drives a running prediction service with random in-bounds
// buildings and verifies every answer.
package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Sentinel errors.
var (
	ErrNotReady      = errors.New("service is not ready")
	ErrVerification  = errors.New("verification failed")
	ErrInvalidConfig = errors.New("invalid load config")
)

// Run executes a complete load run and returns its statistics. Rejected or
// failed requests are counted; an answer that breaks the unit conversion
// fails the run with ErrVerification.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Requests <= 0 || config.Workers <= 0 {
		return nil, fmt.Errorf("%w: requests and workers must be positive", ErrInvalidConfig)
	}

	stats := &Stats{StartTime: time.Now()}
	logger.Get().Info(ctx, "starting load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := checkReady(ctx, config); err != nil {
		return nil, err
	}

	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return nil, err
	}

	if config.OutputFile != "" {
		if err := saveRequests(config.OutputFile, requests); err != nil {
			logger.Get().Warn(ctx, "failed to save buildings", logger.Error(err))
		}
	}

	outcomes := submitRequests(ctx, config, requests, stats)
	verr := verifyOutcomes(outcomes, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verr != nil {
		return stats, fmt.Errorf("%w: %d answers: %w", ErrVerification, stats.Violations, verr)
	}
	return stats, ctx.Err()
}

// checkReady verifies the service has loaded its artifacts.
func checkReady(ctx context.Context, config *Config) error {
	resp, err := newHTTPClient(config.Timeout).Get(ctx, config.BaseURL+"/readyz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: readyz answered %d", ErrNotReady, resp.StatusCode)
	}
	return nil
}

// saveRequests writes the generated requests as a JSON array.
func saveRequests(filename string, requests []Request) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal buildings: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Any("modelVersions", stats.Versions),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
