package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository/repositorytest"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline/pipelinetest"
	. "github.com/smartystreets/goconvey/convey"
)

const tinySchema = `
numeric: [PropertyGFATotal]
binary: []
categorical: [LocationZone]
`

const tinyScaler = `{"feature_names_in": ["PropertyGFATotal"], "mean": [0], "scale": [1]}`

const tinyEncoder = `{"feature_names_in": ["LocationZone"], "categories": [["Centre", "Proche"]], "handle_unknown": "ignore"}`

const stump = `{"nodeid": 0, "split": "f0", "split_condition": 10, "yes": 1, "no": 2, "missing": 1,
  "children": [{"nodeid": 1, "leaf": 1.5}, {"nodeid": 2, "leaf": -0.5}]}`

func tinyFS(manifest, model string) fstest.MapFS {
	return fstest.MapFS{
		repository.ManifestFile: {Data: []byte(manifest)},
		repository.SchemaFile:   {Data: []byte(tinySchema)},
		repository.ScalerFile:   {Data: []byte(tinyScaler)},
		repository.EncoderFile:  {Data: []byte(tinyEncoder)},
		repository.ModelFile:    {Data: []byte(model)},
	}
}

func TestFileStoreLoad(t *testing.T) {
	Convey("Given a saved fixture directory", t, func() {
		dir := repositorytest.Dir(t)
		store := repository.NewFileStore(dir)

		Convey("When loading it", func() {
			set, err := store.Load(context.Background())

			Convey("Then every artifact is present", func() {
				So(err, ShouldBeNil)
				So(set.Check(), ShouldBeNil)
				So(set.Info.Version, ShouldEqual, repositorytest.Version)
				So(set.Info.Kind, ShouldEqual, artifacts.KindLinear)
				So(set.Info.R2, ShouldEqual, artifacts.DefaultR2)
				So(set.Schema, ShouldResemble, pipelinetest.Schema())
			})

			Convey("Then the set drives a consistent pipeline", func() {
				p, err := pipeline.New(set, features.NewDeriver(features.DefaultConstants()))
				So(err, ShouldBeNil)

				res, err := p.Run(pipelinetest.Input())
				So(err, ShouldBeNil)
				So(res.Prediction.ConsumptionKBTU, ShouldEqual, 500000.0)
				So(res.Model.Version, ShouldEqual, repositorytest.Version)
			})
		})

		Convey("When the encoder file is removed", func() {
			So(os.Remove(filepath.Join(dir, repository.EncoderFile)), ShouldBeNil)
			_, err := store.Load(context.Background())

			Convey("Then loading fails as a configuration error", func() {
				So(errors.Is(err, apperr.ErrConfiguration), ShouldBeTrue)
				So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, repository.EncoderFile)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := store.Load(ctx)

			Convey("Then loading stops", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty directory", t, func() {
		_, err := repository.NewFileStore(t.TempDir()).Load(context.Background())

		Convey("Then the missing manifest is reported", func() {
			So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)
			So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
		})
	})
}

func TestManifestValidation(t *testing.T) {
	Convey("Given manifests with missing fields", t, func() {
		cases := map[string]error{
			"version: '1'\nmodel_kind: linear\n":                   repository.ErrInvalidManifest,
			"name: energy\nmodel_kind: linear\n":                   repository.ErrInvalidManifest,
			"name: energy\nversion: '1'\nmodel_kind: random_forest\n": repository.ErrUnknownModelKind,
		}

		for manifest, want := range cases {
			store := repository.NewFileStore("", repository.WithFS(tinyFS(manifest, "{}")))
			_, err := store.Manifest()
			So(errors.Is(err, want), ShouldBeTrue)
			So(errors.Is(err, apperr.ErrConfiguration), ShouldBeTrue)
		}
	})

	Convey("Given a manifest under another name", t, func() {
		fsys := fstest.MapFS{"model.yaml": {Data: []byte("name: energy\nversion: '7'\nmodel_kind: linear\nr2_score: 0.7\n")}}
		store := repository.NewFileStore("", repository.WithFS(fsys), repository.WithManifestName("model.yaml"))

		m, err := store.Manifest()

		Convey("Then it is read with its quality figures", func() {
			So(err, ShouldBeNil)
			So(m.Version, ShouldEqual, "7")
			So(m.R2, ShouldEqual, 0.7)
		})
	})
}

func TestTreeModelLoading(t *testing.T) {
	Convey("Given a bare booster dump", t, func() {
		row := func(gfa float64) []float64 { return []float64{gfa, 1, 0} }

		Convey("When the manifest carries base_score", func() {
			manifest := "name: energy\nversion: '1'\nmodel_kind: xgboost_json\nbase_score: 0.5\n"
			set, err := repository.NewFileStore("", repository.WithFS(tinyFS(manifest, "["+stump+"]"))).Load(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the ensemble adds it to the leaves", func() {
				So(set.Model.NumFeatures(), ShouldEqual, 3)
				low, err := set.Model.Predict(row(5))
				So(err, ShouldBeNil)
				So(low, ShouldEqual, 2.0)
				high, err := set.Model.Predict(row(20))
				So(err, ShouldBeNil)
				So(high, ShouldEqual, 0.0)
			})
		})

		Convey("When base_score is absent", func() {
			manifest := "name: energy\nversion: '1'\nmodel_kind: xgboost_json\n"
			_, err := repository.NewFileStore("", repository.WithFS(tinyFS(manifest, "["+stump+"]"))).Load(context.Background())

			Convey("Then the dump is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidManifest), ShouldBeTrue)
			})
		})
	})

	Convey("Given a dump with a header", t, func() {
		manifest := "name: energy\nversion: '1'\nmodel_kind: xgboost_json\n"
		model := `{"base_score": 1, "num_feature": 3, "trees": [` + stump + `]}`
		set, err := repository.NewFileStore("", repository.WithFS(tinyFS(manifest, model))).Load(context.Background())

		Convey("Then the header base score is used", func() {
			So(err, ShouldBeNil)
			y, err := set.Model.Predict(row3(5))
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 2.5)
		})
	})

	Convey("Given a malformed model file", t, func() {
		manifest := "name: energy\nversion: '1'\nmodel_kind: linear\n"
		_, err := repository.NewFileStore("", repository.WithFS(tinyFS(manifest, "{not json"))).Load(context.Background())

		Convey("Then loading fails as a configuration error", func() {
			So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)
		})
	})
}

func row3(gfa float64) []float64 { return []float64{gfa, 1, 0} }

func TestSave(t *testing.T) {
	Convey("Given a bundle whose kind has no parameters", t, func() {
		b := repositorytest.Bundle()
		b.Manifest.Kind = artifacts.KindXGBoostJSON

		Convey("Then Save refuses it", func() {
			err := repository.Save(t.TempDir(), b)
			So(errors.Is(err, repository.ErrUnknownModelKind), ShouldBeTrue)
		})
	})
}
