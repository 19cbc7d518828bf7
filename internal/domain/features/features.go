// Package features turns a validated building description into the named
// feature set the trained artifacts expect.
package features

import (
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/classify"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/geo"
)

// Defaults for Constants.
const (
	DefaultReferenceYear = 2016
	DefaultCenterLat     = 47.6062
	DefaultCenterLon     = -122.3321
)

// Simplified-input assumptions fixed at training time.
const (
	LargestUseShare      = 0.85
	EnergyStarImputation = 50.0
	NonResidential       = "NonResidential"
	oldAgeYears          = 50
	largeGFA             = 50_000
)

// Constants are the deployment-independent reference values baked into
// the derivation formulas.
type Constants struct {
	ReferenceYear int
	CenterLat     float64
	CenterLon     float64
}

// DefaultConstants returns the dataset reference year and the Seattle
// city-center coordinate.
func DefaultConstants() Constants {
	return Constants{
		ReferenceYear: DefaultReferenceYear,
		CenterLat:     DefaultCenterLat,
		CenterLon:     DefaultCenterLon,
	}
}

// Vector is a derived feature set split into its three groups.
type Vector struct {
	Numeric     map[string]float64
	Binary      map[string]float64
	Categorical map[string]string
}

// Float returns a numeric or binary feature.
func (v Vector) Float(name string) (float64, bool) {
	if f, ok := v.Numeric[name]; ok {
		return f, true
	}
	f, ok := v.Binary[name]
	return f, ok
}

// Flag reports whether a binary feature is set.
func (v Vector) Flag(name string) bool {
	return v.Binary[name] == 1
}

// Deriver computes feature vectors. The zero value is not usable; build
// one with NewDeriver.
type Deriver struct {
	c Constants
}

// NewDeriver returns a Deriver bound to c.
func NewDeriver(c Constants) *Deriver {
	return &Deriver{c: c}
}

// Constants returns the reference values the Deriver was built with.
func (d *Deriver) Constants() Constants { return d.c }

// Names returns the feature names Derive produces.
func (d *Deriver) Names() Names { return DefaultNames() }

// Derive computes every feature for in. The input must already have passed
// Validate; Derive itself never fails. A parking area larger than the total
// area is not re-checked here and yields a negative building area.
func (d *Deriver) Derive(in building.Input) Vector {
	total := in.PropertyGFATotal
	parking := in.Parking()
	floors := float64(in.NumberofFloors)

	age := float64(d.c.ReferenceYear - in.YearBuilt)
	distance := geo.Distance(in.Latitude, in.Longitude, d.c.CenterLat, d.c.CenterLon)
	buildingGFA := total - parking

	score, known := in.EnergyStar()
	if !known {
		score = EnergyStarImputation
	}

	return Vector{
		Numeric: map[string]float64{
			GFATotal:          total,
			GFABuildings:      buildingGFA,
			GFAParking:        parking,
			Floors:            floors,
			Buildings:         in.Buildings(),
			BuildingAge:       age,
			Latitude:          in.Latitude,
			Longitude:         in.Longitude,
			DistanceToCenter:  distance,
			LargestUseGFA:     total * LargestUseShare,
			NumberOfUses:      1,
			PrimaryUseRatio:   LargestUseShare,
			SecondUseRatio:    0,
			ParkingRatio:      parking / total,
			AvgFloorArea:      buildingGFA / floors,
			EnergyStarImputed: score,
			ComplexityScore:   total,
		},
		Binary: map[string]float64{
			HasParking:         indicator(parking > 0),
			HasMultipleUses:    0,
			HasSecondUse:       0,
			HasEnergyStar:      indicator(known),
			IsOldLargeBuilding: indicator(age > oldAgeYears && total > largeGFA),
		},
		Categorical: map[string]string{
			BuildingType:           NonResidential,
			PrimaryPropertyType:    in.PrimaryPropertyType,
			Neighborhood:           in.Neighborhood,
			LargestPropertyUseType: in.PrimaryPropertyType,
			AgeCategory:            string(classify.Age(age)),
			LocationZone:           string(classify.Zone(distance)),
		},
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
