package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/BehramKo-WistyApp/seattle-energy-api/internal/app"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository/repositorytest"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline/pipelinetest"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be ready before Start", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Ready(), ShouldBeFalse)
			So(svc.MaxBatchSize(), ShouldEqual, 1000)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithMaxBatchSize(10),
			service.WithRequestTimeout(time.Second),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			So(svc.MaxBatchSize(), ShouldEqual, 10)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a fixture artifact directory", t, func() {
		svc := service.New(service.WithArtifactDir(repositorytest.Dir(t)), service.WithWorkerCount(2))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
			})

			Convey("And it should report the model", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["modelVersion"], ShouldEqual, repositorytest.Version)

				m, err := svc.Model()
				So(err, ShouldBeNil)
				So(m.Info.Name, ShouldEqual, "energy-consumption")
				So(len(m.EncodedColumns), ShouldEqual, 14)
				So(m.Constants, ShouldResemble, features.DefaultConstants())
			})

			Convey("And starting twice is harmless", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service without artifacts", t, func() {
		svc := service.New(service.WithArtifactDir(t.TempDir()))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it fails with a configuration error", func() {
				So(errors.Is(err, apperr.ErrConfiguration), ShouldBeTrue)
				So(svc.Ready(), ShouldBeFalse)
			})

			Convey("And predictions report the missing configuration", func() {
				_, err := svc.Predict(context.Background(), pipelinetest.Input())
				So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)

				_, err = svc.Model()
				So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)
			})
		})
	})

	Convey("Given a service with no store at all", t, func() {
		err := service.New().Start(context.Background())

		Convey("Then Start refuses to run", func() {
			So(errors.Is(err, apperr.ErrConfiguration), ShouldBeTrue)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithArtifactDir(repositorytest.Dir(t)), service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
				So(svc.Ready(), ShouldBeFalse)
			})

			Convey("And stopping again is harmless", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithArtifactDir(repositorytest.Dir(t)), service.WithWorkerCount(2))
		ctx := logger.WithRequestID(context.Background(), "req-42")
		So(svc.Start(ctx), ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When predicting the documented example", func() {
			res, err := svc.Predict(ctx, pipelinetest.Input())

			Convey("Then the result carries the prediction and the request id", func() {
				So(err, ShouldBeNil)
				So(res.Prediction.ConsumptionKBTU, ShouldEqual, 500000.0)
				So(res.RequestID, ShouldEqual, "req-42")
				So(res.Model.Version, ShouldEqual, repositorytest.Version)
			})

			Convey("And the counters move", func() {
				So(svc.GetStats()["predictions"], ShouldEqual, int64(1))
			})
		})

		Convey("When predicting an out-of-bounds building", func() {
			in := pipelinetest.Input()
			in.NumberofFloors = 0
			_, err := svc.Predict(ctx, in)

			Convey("Then a validation error names the field", func() {
				v, ok := apperr.AsValidation(err)
				So(ok, ShouldBeTrue)
				So(v.Field, ShouldEqual, "NumberofFloors")
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
			})
		})
	})
}
