package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ENERGY_ADDR", ":9090")
			_ = os.Setenv("ENERGY_ARTIFACT_DIR", "/srv/models/2016.1")
			_ = os.Setenv("ENERGY_WORKER_COUNT", "16")
			_ = os.Setenv("ENERGY_MAX_BATCH_SIZE", "250")
			_ = os.Setenv("ENERGY_CENTER_LAT", "47.61")
			_ = os.Setenv("ENERGY_KAFKA_ENABLED", "true")
			_ = os.Setenv("ENERGY_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ArtifactDir, convey.ShouldEqual, "/srv/models/2016.1")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 250)
				convey.So(cfg.CenterLat, convey.ShouldEqual, 47.61)
				convey.So(cfg.KafkaEnabled, convey.ShouldBeTrue)
				convey.So(cfg.Brokers(), convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
# served model
addr: ":7070"
artifact_dir: "/srv/models"
reference_year: 2018
queue_size: 500
log_format: text
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENERGY_CONFIG", tmpFile)
			_ = os.Setenv("ENERGY_ADDR", ":8081")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.ArtifactDir, convey.ShouldEqual, "/srv/models")
				convey.So(cfg.ReferenceYear, convey.ShouldEqual, 2018)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 1_000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENERGY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ENERGY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ENERGY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ENERGY_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ENERGY_CONFIG",
		"ENERGY_ADDR",
		"ENERGY_ARTIFACT_DIR",
		"ENERGY_WORKER_COUNT",
		"ENERGY_QUEUE_SIZE",
		"ENERGY_MAX_BATCH_SIZE",
		"ENERGY_CENTER_LAT",
		"ENERGY_KAFKA_ENABLED",
		"ENERGY_KAFKA_BROKERS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "energy-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
