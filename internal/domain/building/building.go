// Package building holds the user-facing building description and its
// bounds validation.
package building

import (
	"math"
	"strings"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
)

// Input bounds. Floor area bounds are open, every other bound is closed.
const (
	MinGFATotal     = 10_000.0
	MaxGFATotal     = 10_000_000.0
	MinFloors       = 1
	MaxFloors       = 100
	MinYearBuilt    = 1900
	MaxYearBuilt    = 2024
	MinLatitude     = 47.5
	MaxLatitude     = 47.8
	MinLongitude    = -122.5
	MaxLongitude    = -122.2
	MinBuildings    = 1.0
	MinEnergyStar   = 0.0
	MaxEnergyStar   = 100.0
	DefaultParking  = 0.0
	DefaultBuilding = 1.0
)

// Field names as they appear on the wire.
const (
	FieldGFATotal     = "PropertyGFATotal"
	FieldFloors       = "NumberofFloors"
	FieldYearBuilt    = "YearBuilt"
	FieldPropertyType = "PrimaryPropertyType"
	FieldNeighborhood = "Neighborhood"
	FieldLatitude     = "Latitude"
	FieldLongitude    = "Longitude"
	FieldParking      = "PropertyGFAParking"
	FieldBuildings    = "NumberofBuildings"
	FieldEnergyStar   = "ENERGYSTARScore"
)

// Input is the sparse building description supplied by callers.
// Optional fields are pointers so that "absent" stays distinguishable
// from zero.
type Input struct {
	PropertyGFATotal    float64  `json:"PropertyGFATotal"`
	NumberofFloors      int      `json:"NumberofFloors"`
	YearBuilt           int      `json:"YearBuilt"`
	PrimaryPropertyType string   `json:"PrimaryPropertyType"`
	Neighborhood        string   `json:"Neighborhood"`
	Latitude            float64  `json:"Latitude"`
	Longitude           float64  `json:"Longitude"`
	PropertyGFAParking  *float64 `json:"PropertyGFAParking,omitempty"`
	NumberofBuildings   *float64 `json:"NumberofBuildings,omitempty"`
	ENERGYSTARScore     *float64 `json:"ENERGYSTARScore,omitempty"`
}

// Parking returns the parking floor area, defaulting to 0.
func (in Input) Parking() float64 {
	if in.PropertyGFAParking == nil {
		return DefaultParking
	}
	return *in.PropertyGFAParking
}

// Buildings returns the building count, defaulting to 1.
func (in Input) Buildings() float64 {
	if in.NumberofBuildings == nil {
		return DefaultBuilding
	}
	return *in.NumberofBuildings
}

// EnergyStar returns the ENERGY STAR score and whether it was supplied.
func (in Input) EnergyStar() (float64, bool) {
	if in.ENERGYSTARScore == nil {
		return 0, false
	}
	return *in.ENERGYSTARScore, true
}

// Validate checks every field against its declared bound and returns the
// first violation as an *apperr.ValidationError. Nothing is clamped.
func (in Input) Validate() error {
	if !finite(in.PropertyGFATotal) || in.PropertyGFATotal <= MinGFATotal || in.PropertyGFATotal >= MaxGFATotal {
		return apperr.Invalid(FieldGFATotal, "in (10000, 10000000)", in.PropertyGFATotal)
	}
	if in.NumberofFloors < MinFloors || in.NumberofFloors > MaxFloors {
		return apperr.Invalid(FieldFloors, "in [1, 100]", in.NumberofFloors)
	}
	if in.YearBuilt < MinYearBuilt || in.YearBuilt > MaxYearBuilt {
		return apperr.Invalid(FieldYearBuilt, "in [1900, 2024]", in.YearBuilt)
	}
	// An absent label decodes to "". Unknown labels pass and encode to zeros.
	if strings.TrimSpace(in.PrimaryPropertyType) == "" {
		return apperr.Invalid(FieldPropertyType, "non-empty", nil)
	}
	if strings.TrimSpace(in.Neighborhood) == "" {
		return apperr.Invalid(FieldNeighborhood, "non-empty", nil)
	}
	if !finite(in.Latitude) || in.Latitude < MinLatitude || in.Latitude > MaxLatitude {
		return apperr.Invalid(FieldLatitude, "in [47.5, 47.8]", in.Latitude)
	}
	if !finite(in.Longitude) || in.Longitude < MinLongitude || in.Longitude > MaxLongitude {
		return apperr.Invalid(FieldLongitude, "in [-122.5, -122.2]", in.Longitude)
	}
	if p := in.PropertyGFAParking; p != nil {
		if !finite(*p) || *p < 0 {
			return apperr.Invalid(FieldParking, ">= 0", *p)
		}
		// Parking is part of the total floor area; a larger parking area
		// would derive a negative building area.
		if *p > in.PropertyGFATotal {
			return apperr.Invalid(FieldParking, "<= PropertyGFATotal", *p)
		}
	}
	if b := in.NumberofBuildings; b != nil {
		if !finite(*b) || *b < MinBuildings {
			return apperr.Invalid(FieldBuildings, ">= 1", *b)
		}
	}
	if s := in.ENERGYSTARScore; s != nil {
		if !finite(*s) || *s < MinEnergyStar || *s > MaxEnergyStar {
			return apperr.Invalid(FieldEnergyStar, "in [0, 100]", *s)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns a pointer to f, for filling optional fields.
func Float(f float64) *float64 { return &f }
