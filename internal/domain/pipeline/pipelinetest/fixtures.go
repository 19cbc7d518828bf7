// Package pipelinetest provides small in-memory artifact sets for tests.
package pipelinetest

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/classify"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
)

// KBTUPerSqFt is the slope of the fixture model on PropertyGFATotal.
const KBTUPerSqFt = 10.0

// Schema returns the training schema.
func Schema() artifacts.Schema {
	n := features.DefaultNames()
	return artifacts.Schema{Numeric: n.Numeric, Binary: n.Binary, Categorical: n.Categorical}
}

// EncoderParams returns a small fitted encoder covering the example inputs.
func EncoderParams() artifacts.EncoderParams {
	ages := make([]string, 0, len(classify.AgeCategories))
	for _, c := range classify.AgeCategories {
		ages = append(ages, string(c))
	}
	zones := make([]string, 0, len(classify.LocationZones))
	for _, z := range classify.LocationZones {
		zones = append(zones, string(z))
	}
	return artifacts.EncoderParams{
		FeatureNamesIn: Schema().Categorical,
		Categories: [][]string{
			{features.NonResidential},
			{"Hotel", "Office"},
			{"BALLARD", "DOWNTOWN"},
			{"Hotel", "Office"},
			ages,
			zones,
		},
		HandleUnknown: artifacts.HandleUnknownIgnore,
	}
}

// LinearParams returns a model that predicts KBTUPerSqFt * PropertyGFATotal
// with an identity scaler in front.
func LinearParams(width int) artifacts.LinearParams {
	coef := make([]float64, width)
	coef[0] = KBTUPerSqFt
	return artifacts.LinearParams{Coefficients: coef}
}

// Set returns a consistent artifact set.
func Set() artifacts.Set {
	schema := Schema()
	enc, err := artifacts.NewOneHotEncoder(EncoderParams())
	if err != nil {
		panic(err)
	}
	width := len(schema.ScaledColumns()) + len(enc.OutputNames())
	model, err := artifacts.NewLinearModel(LinearParams(width))
	if err != nil {
		panic(err)
	}
	return artifacts.Set{
		Model:   model,
		Scaler:  artifacts.IdentityScaler(schema.ScaledColumns()),
		Encoder: enc,
		Schema:  schema,
		Info:    artifacts.ModelInfo{Name: "energy-consumption", Version: "test", Kind: artifacts.KindLinear},
	}
}

// Input returns the documented downtown office example.
func Input() building.Input {
	return building.Input{
		PropertyGFATotal:    50000,
		NumberofFloors:      5,
		YearBuilt:           1990,
		PrimaryPropertyType: "Office",
		Neighborhood:        "DOWNTOWN",
		Latitude:            47.6062,
		Longitude:           -122.3321,
		PropertyGFAParking:  building.Float(5000),
		NumberofBuildings:   building.Float(1),
		ENERGYSTARScore:     building.Float(75),
	}
}
