package artifacts_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStandardScaler(t *testing.T) {
	Convey("Given a fitted standard scaler", t, func() {
		s, err := artifacts.NewStandardScaler(artifacts.ScalerParams{
			FeatureNamesIn: []string{"a", "b", "c"},
			Mean:           []float64{10, 0, 5},
			Scale:          []float64{2, 0, 0.5},
		})
		So(err, ShouldBeNil)

		Convey("When transforming a row", func() {
			out, err := s.Transform([]float64{14, 3, 6})

			Convey("Then each column is centered and scaled, zero scale acting as one", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []float64{2, 3, 2})
			})
		})

		Convey("When the row width is wrong", func() {
			_, err := s.Transform([]float64{1, 2})

			Convey("Then ErrWidth is returned", func() {
				So(errors.Is(err, artifacts.ErrWidth), ShouldBeTrue)
			})
		})

		Convey("Then the fitted names are exposed", func() {
			So(s.FeatureNames(), ShouldResemble, []string{"a", "b", "c"})
			So(s.NumFeatures(), ShouldEqual, 3)
		})
	})

	Convey("Given a scaler exported with with_mean disabled", t, func() {
		off := false
		s, err := artifacts.NewStandardScaler(artifacts.ScalerParams{
			Mean:     []float64{100},
			Scale:    []float64{4},
			WithMean: &off,
		})
		So(err, ShouldBeNil)

		Convey("Then only scaling applies", func() {
			out, err := s.Transform([]float64{8})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []float64{2})
		})
	})

	Convey("Given inconsistent scaler parameters", t, func() {
		_, err := artifacts.NewStandardScaler(artifacts.ScalerParams{
			Mean:  []float64{1, 2},
			Scale: []float64{1},
		})

		Convey("Then construction fails", func() {
			So(errors.Is(err, artifacts.ErrInvalidArtifact), ShouldBeTrue)
		})
	})
}

func TestOneHotEncoder(t *testing.T) {
	Convey("Given a fitted one-hot encoder", t, func() {
		e, err := artifacts.NewOneHotEncoder(artifacts.EncoderParams{
			FeatureNamesIn: []string{"AgeCategory", "LocationZone"},
			Categories:     [][]string{{"Récent", "Très récent"}, {"Centre", "Proche", "Périphérie"}},
		})
		So(err, ShouldBeNil)

		Convey("Then output names follow fitted order", func() {
			So(e.OutputNames(), ShouldResemble, []string{
				"AgeCategory_Récent", "AgeCategory_Très récent",
				"LocationZone_Centre", "LocationZone_Proche", "LocationZone_Périphérie",
			})
		})

		Convey("When encoding known categories", func() {
			out, err := e.Transform([]string{"Très récent", "Proche"})

			Convey("Then one indicator per feature is set", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []float64{0, 1, 0, 1, 0})
			})
		})

		Convey("When encoding an unknown category", func() {
			out, err := e.Transform([]string{"Ancien", "Centre"})

			Convey("Then the feature encodes to all zeros", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []float64{0, 0, 1, 0, 0})
			})
		})
	})

	Convey("Given a strict encoder that drops the first category", t, func() {
		e, err := artifacts.NewOneHotEncoder(artifacts.EncoderParams{
			FeatureNamesIn: []string{"BuildingType"},
			Categories:     [][]string{{"Campus", "NonResidential"}},
			HandleUnknown:  artifacts.HandleUnknownError,
			Drop:           artifacts.DropFirst,
		})
		So(err, ShouldBeNil)

		Convey("Then the dropped category has no column", func() {
			So(e.OutputNames(), ShouldResemble, []string{"BuildingType_NonResidential"})
			out, err := e.Transform([]string{"Campus"})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []float64{0})
		})

		Convey("Then unknown categories are rejected", func() {
			_, err := e.Transform([]string{"Multifamily"})
			So(errors.Is(err, artifacts.ErrUnknownCategory), ShouldBeTrue)
		})
	})
}

const dumpedForest = `{
  "base_score": 100,
  "num_feature": 2,
  "trees": [
    {"nodeid": 0, "split": "f0", "split_condition": 5, "yes": 1, "no": 2, "missing": 2, "children": [
      {"nodeid": 1, "leaf": 10},
      {"nodeid": 2, "split": "f1", "split_condition": 0.5, "yes": 3, "no": 4, "missing": 3, "children": [
        {"nodeid": 3, "leaf": 20},
        {"nodeid": 4, "leaf": 30}
      ]}
    ]},
    {"nodeid": 0, "leaf": -1}
  ]
}`

func TestTreeEnsemble(t *testing.T) {
	Convey("Given a dumped two-tree forest", t, func() {
		var p artifacts.TreeParams
		So(json.Unmarshal([]byte(dumpedForest), &p), ShouldBeNil)
		m, err := artifacts.NewTreeEnsemble(p)
		So(err, ShouldBeNil)
		So(m.NumFeatures(), ShouldEqual, 2)
		So(m.NumTrees(), ShouldEqual, 2)

		Convey("When the first split goes left", func() {
			y, err := m.Predict([]float64{1, 0})

			Convey("Then base plus both leaves is returned", func() {
				So(err, ShouldBeNil)
				So(y, ShouldEqual, 109.0)
			})
		})

		Convey("When both splits go right", func() {
			y, _ := m.Predict([]float64{5, 1})

			Convey("Then the right-most leaf is used", func() {
				So(y, ShouldEqual, 129.0)
			})
		})

		Convey("When values are missing", func() {
			y, _ := m.Predict([]float64{math.NaN(), math.NaN()})

			Convey("Then the missing branches are followed", func() {
				So(y, ShouldEqual, 119.0)
			})
		})

		Convey("When the row width is wrong", func() {
			_, err := m.Predict([]float64{1, 2, 3})

			Convey("Then ErrWidth is returned", func() {
				So(errors.Is(err, artifacts.ErrWidth), ShouldBeTrue)
			})
		})
	})

	Convey("Given a forest whose split names an out-of-range feature", t, func() {
		leaf := 1.0
		_, err := artifacts.NewTreeEnsemble(artifacts.TreeParams{
			NumFeature: 1,
			Trees: []artifacts.TreeNode{{NodeID: 0, Split: "f3", Yes: 1, No: 2, Children: []artifacts.TreeNode{
				{NodeID: 1, Leaf: &leaf}, {NodeID: 2, Leaf: &leaf},
			}}},
		})

		Convey("Then construction fails", func() {
			So(errors.Is(err, artifacts.ErrInvalidArtifact), ShouldBeTrue)
		})
	})

	Convey("Given a forest that addresses features by name", t, func() {
		leftLeaf, rightLeaf := 1.0, 2.0
		m, err := artifacts.NewTreeEnsemble(artifacts.TreeParams{
			FeatureNames: []string{"x", "y"},
			Trees: []artifacts.TreeNode{{NodeID: 0, Split: "y", SplitCondition: 0, Yes: 1, No: 2, Missing: 1, Children: []artifacts.TreeNode{
				{NodeID: 1, Leaf: &leftLeaf}, {NodeID: 2, Leaf: &rightLeaf},
			}}},
		})
		So(err, ShouldBeNil)

		Convey("Then the named column drives the split", func() {
			y, _ := m.Predict([]float64{-5, 3})
			So(y, ShouldEqual, 2.0)
		})

		Convey("Then the training column order is kept", func() {
			So(m.FeatureNames(), ShouldResemble, []string{"x", "y"})
		})
	})
}

func TestLinearModel(t *testing.T) {
	Convey("Given a linear model", t, func() {
		m, err := artifacts.NewLinearModel(artifacts.LinearParams{Intercept: 1, Coefficients: []float64{2, -1}})
		So(err, ShouldBeNil)

		Convey("Then it predicts the affine combination", func() {
			y, err := m.Predict([]float64{3, 4})
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 3.0)
		})

		Convey("Then a wrong width is an ErrWidth", func() {
			_, err := m.Predict([]float64{3})
			So(errors.Is(err, artifacts.ErrWidth), ShouldBeTrue)
		})
	})
}

func TestSet_Check(t *testing.T) {
	Convey("Given an artifact set without a model", t, func() {
		set := artifacts.Set{
			Scaler: artifacts.IdentityScaler([]string{"a"}),
			Schema: artifacts.Schema{Numeric: []string{"a"}},
		}

		Convey("Then Check reports a configuration error", func() {
			So(errors.Is(set.Check(), apperr.ErrConfiguration), ShouldBeTrue)
		})
	})

	Convey("Given model info without quality figures", t, func() {
		info := artifacts.ModelInfo{Name: "energy", Version: "1"}.WithDefaults()

		Convey("Then the shipped evaluation is used", func() {
			So(info.R2, ShouldEqual, artifacts.DefaultR2)
			So(info.MAE, ShouldEqual, artifacts.DefaultMAE)
			So(info.Note, ShouldEqual, artifacts.DefaultNote)
			So(info.Note, ShouldStartWith, "Le modèle explique")
		})
	})
}
