package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/http/api"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/http/site"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/http/swagger"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/mq/kafka"
	app "github.com/BehramKo-WistyApp/seattle-energy-api/internal/app"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/config"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging with defaults until the config is known.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		logger.Get().Warn(ctx, "invalid log settings; keeping defaults",
			logger.String("log_level", cfg.LogLevel), logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	log := logger.Get()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "service failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run starts the prediction service and its transports and blocks until ctx
// is done. Artifact loading failures are returned before anything listens.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go metrics.StartSystemCollector(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	if cfg.KafkaEnabled {
		consumer, err := kafka.NewConsumer(kafka.Config{
			Brokers:       cfg.Brokers(),
			GroupID:       cfg.KafkaGroupID,
			RequestTopic:  cfg.KafkaRequestTopic,
			ResponseTopic: cfg.KafkaResponseTopic,
		}, svc, kafka.WithLogger(log.Named("kafka")))
		if err != nil {
			return err
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				log.Error(ctx, "kafka close failed", logger.Error(err))
			}
		}()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error(ctx, "kafka consumer stopped", logger.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithArtifactDir(cfg.ArtifactDir),
		app.WithConstants(cfg.Constants()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithMaxBatchSize(cfg.MaxBatchSize),
		app.WithRequestTimeout(cfg.RequestTimeout()),
	)
}

// newMux registers the API, the docs and the landing page.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes the queue and worker gauges from the
// service statistics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
		}
	}
}
