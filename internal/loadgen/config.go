package loadgen

import (
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of buildings to predict
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional file for the generated buildings
	Verbose    bool          // Log every failed request
}

// Request is one generated building and the id it is sent under.
type Request struct {
	RequestID string         `json:"request_id"`
	Building  building.Input `json:"building"`
}

// Outcome is the verified answer to one Request.
type Outcome struct {
	RequestID string
	Status    int
	Result    pipeline.Result
	Err       error
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Rejected   int // 4xx answers
	Failed     int // transport errors and 5xx answers
	Violations int // successful answers that break the unit conversion
	Versions   map[string]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
