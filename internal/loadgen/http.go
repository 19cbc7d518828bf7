package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
)

// RequestIDHeader carries the request id to the service.
const RequestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	return c.client.Do(req)
}

// submitRequests posts every request to /predict on a worker pool and
// returns the outcomes in request order.
func submitRequests(ctx context.Context, config *Config, requests []Request, stats *Stats) []Outcome {
	log := logger.Get()
	log.Info(ctx, "submitting buildings", logger.Int("requests", len(requests)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"
	outcomes := make([]Outcome, len(requests))

	var submitted atomic.Int64
	done := make(chan struct{})
	go reportProgress(ctx, &submitted, len(requests), done)

	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = submitSingle(ctx, client, url, requests[i])
				submitted.Add(1)
				if config.Verbose && outcomes[i].Err != nil {
					log.Warn(ctx, "request failed",
						logger.String("request_id", requests[i].RequestID), logger.Error(outcomes[i].Err))
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range requests {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()
	close(done)

	stats.Submitted = int(submitted.Load())
	return outcomes
}

// submitSingle posts one request and decodes a successful answer.
func submitSingle(ctx context.Context, client *HTTPClient, url string, r Request) Outcome {
	out := Outcome{RequestID: r.RequestID}

	resp, err := client.Post(ctx, url, r.RequestID, r.Building)
	if err != nil {
		out.Err = err
		return out
	}
	defer func() { _ = resp.Body.Close() }()

	out.Status = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Err = fmt.Errorf("read response: %w", err)
		return out
	}
	if resp.StatusCode != http.StatusOK {
		out.Err = fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		return out
	}
	if err := json.Unmarshal(body, &out.Result); err != nil {
		out.Err = fmt.Errorf("decode response: %w", err)
	}
	return out
}

func reportProgress(ctx context.Context, submitted *atomic.Int64, total int, done <-chan struct{}) {
	ticker := time.NewTicker(ProgressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Get().Info(ctx, "progress", logger.Int("submitted", int(submitted.Load())), logger.Int("total", total))
		}
	}
}
