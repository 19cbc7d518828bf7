// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the Kafka transport.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	eventqueue "github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/queue"
	workerpool "github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/worker"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize      = 10000
	defaultMaxBatchSize   = 1000
	defaultRequestTimeout = 5 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	pipeline   *pipeline.Pipeline
	jobQueue   *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	constants      features.Constants
	workerCount    int
	queueSize      int
	maxBatchSize   int
	requestTimeout time.Duration

	// State
	started   bool
	startedAt time.Time

	// Counters
	predictions atomic.Int64
	failures    atomic.Int64
	batches     atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the artifact store read on Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithArtifactDir reads artifacts from a model directory.
func WithArtifactDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.store = repository.NewFileStore(dir)
		}
	}
}

// WithConstants sets the derivation reference values.
func WithConstants(c features.Constants) Option {
	return func(s *Service) {
		s.constants = c
	}
}

// WithWorkerCount sets the number of batch worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch items.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBatchSize sets the largest accepted batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithRequestTimeout bounds how long a batch waits for its results.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		constants:      features.DefaultConstants(),
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      defaultQueueSize,
		maxBatchSize:   defaultMaxBatchSize,
		requestTimeout: defaultRequestTimeout,
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifacts, checks them against the feature engine and
// starts the batch workers. Any inconsistency is a configuration error and
// leaves the service not ready.
func (s *Service) Start(ctx context.Context) error {
	const op = "service.Start"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...")

	if s.store == nil {
		metrics.SetArtifactsLoaded(false)
		return apperr.Configuration(op, "no artifact store configured")
	}

	set, err := s.store.Load(ctx)
	if err != nil {
		metrics.SetArtifactsLoaded(false)
		s.logger.Error(ctx, "failed to load artifacts", logger.Error(err))
		return err
	}

	p, err := pipeline.New(set, features.NewDeriver(s.constants),
		pipeline.WithStageObserver(func(stage string, d time.Duration) {
			metrics.RecordStageLatency(stage, float64(d.Microseconds())/1000)
		}),
	)
	if err != nil {
		metrics.SetArtifactsLoaded(false)
		s.logger.Error(ctx, "artifacts are inconsistent with the feature engine", logger.Error(err))
		return err
	}

	s.pipeline = p
	s.jobQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(context.WithoutCancel(ctx))

	info := p.Info()
	metrics.SetModelInfo(info.Name, info.Version, info.Kind)
	metrics.SetArtifactsLoaded(true)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "prediction service started",
		logger.String("model", info.Name),
		logger.String("version", info.Version),
		logger.String("kind", info.Kind),
		logger.Int("features", len(set.Schema.ScaledColumns())+len(p.EncodedColumns())),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool := s.workerPool
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping prediction service...")

	// Workers still hold the pipeline while they drain the closed queue.
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	if err := pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	cancel()

	s.mu.Lock()
	s.pipeline = nil
	s.mu.Unlock()

	metrics.SetArtifactsLoaded(false)
	s.logger.Info(ctx, "prediction service stopped")
}

// Ready reports whether artifacts are loaded and requests are served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.pipeline != nil
}

func (s *Service) current() (*pipeline.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pipeline == nil {
		return nil, apperr.Configuration("service", "model artifacts are not loaded")
	}
	return s.pipeline, nil
}

// Predict runs one building through the pipeline. The request id carried
// by ctx is copied into the result.
func (s *Service) Predict(ctx context.Context, in building.Input) (pipeline.Result, error) {
	start := time.Now()

	p, err := s.current()
	if err != nil {
		s.record(ctx, start, 0, err)
		return pipeline.Result{}, err
	}

	res, err := p.Run(in)
	if err != nil {
		s.record(ctx, start, 0, err)
		return pipeline.Result{}, err
	}

	res.RequestID = logger.RequestID(ctx)
	s.record(ctx, start, res.Prediction.ConsumptionKBTU, nil)
	return res, nil
}

func (s *Service) record(ctx context.Context, start time.Time, kbtu float64, err error) {
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err == nil {
		s.predictions.Add(1)
		metrics.RecordPrediction(pipeline.StatusSuccess, latency, kbtu)
		return
	}

	s.failures.Add(1)
	metrics.RecordPrediction(apperr.Status(err), latency, 0)
	if v, ok := apperr.AsValidation(err); ok {
		metrics.RecordValidationError(v.Field)
		s.log().Debug(ctx, "input rejected",
			logger.String("field", v.Field),
			logger.String("bound", v.Bound),
		)
		return
	}

	// Configuration and model errors mean the deployment is broken.
	metrics.RecordErrorByType(apperr.Status(err), "high")
	s.log().Error(ctx, "prediction failed",
		logger.String("kind", apperr.Kind(err)),
		logger.Error(err),
	)
}

// PredictBatch predicts every input on the worker pool. Outcomes are in
// input order; per-item failures are reported in Outcome.Err.
func (s *Service) PredictBatch(ctx context.Context, inputs []building.Input) ([]eventqueue.Outcome, error) {
	if !s.Ready() {
		return nil, apperr.Configuration("service", "model artifacts are not loaded")
	}
	switch {
	case len(inputs) == 0:
		return nil, eventqueue.ErrEmptyBatch
	case len(inputs) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d items, limit %d", eventqueue.ErrBatchTooLarge, len(inputs), s.maxBatchSize)
	}

	s.mu.RLock()
	q := s.jobQueue
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	metrics.RecordBatchSize(len(inputs))
	s.batches.Add(1)

	// Buffered so workers never block on an abandoned batch.
	reply := make(chan eventqueue.Outcome, len(inputs))
	id := logger.RequestID(ctx)
	for i, in := range inputs {
		job := eventqueue.Job{RequestID: id, Index: i, Input: in, Reply: reply}
		if !q.Enqueue(ctx, job) {
			s.log().Warn(ctx, "batch rejected by full queue",
				logger.Int("size", len(inputs)),
				logger.Int("enqueued", i),
			)
			return nil, fmt.Errorf("%w: %d of %d jobs enqueued", eventqueue.ErrFull, i, len(inputs))
		}
	}

	out := make([]eventqueue.Outcome, len(inputs))
	for range inputs {
		select {
		case o := <-reply:
			out[o.Index] = o
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", eventqueue.ErrTimeout, ctx.Err())
		}
	}
	return out, nil
}

// Model describes the loaded model.
func (s *Service) Model() (pipeline.Description, error) {
	p, err := s.current()
	if err != nil {
		return pipeline.Description{}, err
	}
	return p.Describe(), nil
}

// MaxBatchSize returns the largest accepted batch.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"maxBatchSize": s.maxBatchSize,
		"predictions":  s.predictions.Load(),
		"failures":     s.failures.Load(),
		"batches":      s.batches.Load(),
	}

	if s.started {
		queueLen := s.jobQueue.Len(context.Background())
		info := s.pipeline.Info()

		stats["queueLength"] = queueLen
		stats["batchItemsProcessed"] = s.workerPool.Processed()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["modelName"] = info.Name
		stats["modelVersion"] = info.Version

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerActiveCount(s.workerPool.Size())
	}

	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
