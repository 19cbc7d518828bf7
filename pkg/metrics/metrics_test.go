package metrics

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then they are reflected in the manager", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.refreshInterval, ShouldEqual, 5*time.Second)
			})

			Convey("Then metric names carry namespace, subsystem and prefix", func() {
				m.predictions.WithLabelValues("success").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pfx_predictions_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, defaultNamespace)
				So(m.subsystem, ShouldEqual, defaultSubsystem)
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(m.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestDisabledManager(t *testing.T) {
	Convey("Given a disabled manager on a shared registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(registry))

		Convey("When recording", func() {
			m.predictions.WithLabelValues("success").Inc()

			Convey("Then nothing is exposed on the shared registry", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})
	})
}

func TestPredictionMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a successful prediction", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("success"))
			RecordPrediction("success", 1.5, 250000)

			Convey("Then the success counter grows", func() {
				after := testutil.ToFloat64(globalManager.predictions.WithLabelValues("success"))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When recording a validation failure", func() {
			before := testutil.ToFloat64(globalManager.validationErrors.WithLabelValues("YearBuilt"))
			RecordPrediction("validation_error", 0.1, 0)
			RecordValidationError("YearBuilt")

			Convey("Then the field counter grows", func() {
				after := testutil.ToFloat64(globalManager.validationErrors.WithLabelValues("YearBuilt"))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When publishing model info twice", func() {
			SetModelInfo("energy", "1", "linear")
			SetModelInfo("energy", "2", "xgboost_json")

			Convey("Then only the latest version is reported", func() {
				So(testutil.CollectAndCount(globalManager.modelInfo), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.modelInfo.WithLabelValues("energy", "2", "xgboost_json")), ShouldEqual, 1.0)
			})
		})

		Convey("When toggling readiness", func() {
			SetArtifactsLoaded(true)
			So(testutil.ToFloat64(globalManager.artifactsLoaded), ShouldEqual, 1.0)
			SetArtifactsLoaded(false)
			So(testutil.ToFloat64(globalManager.artifactsLoaded), ShouldEqual, 0.0)
		})

		Convey("When recording every other family", func() {
			So(func() {
				RecordStageLatency("derive", 0.01)
				RecordBatchSize(10)
				RecordArtifactLoad(150 * time.Millisecond)
				RecordHTTPRequest("/predict", "POST", "200")
				RecordHTTPRequestDuration("/predict", "POST", "200", 3)
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.2)
				UpdateWorkerActiveCount(4)
				UpdateWorkerMessagesPerSecond(12)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordKafkaConsumed("energy.requests")
				RecordKafkaProduced("energy.responses", "success")
				RecordKafkaError("produce")
				RecordErrorByComponent("api", "bad_request")
				RecordErrorByType("model_error", "high")
				RecordErrorByEndpoint("/predict", "POST", "model_error")
			}, ShouldNotPanic)
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given a running system collector", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			StartSystemCollector(ctx)
			close(done)
		}()

		Convey("When it is cancelled", func() {
			time.Sleep(20 * time.Millisecond)
			cancel()

			Convey("Then it stops and has sampled goroutines", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("collector did not stop")
				}
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordPrediction("success", 1, 1e6)
					RecordStageLatency("inference", 0.5)
				}
			}()
		}
		wg.Wait()

		Convey("Then the registry still gathers cleanly", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "energy_api_predictions_total")
		})
	})
}
