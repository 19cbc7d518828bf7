package building_test

import (
	"errors"
	"math"
	"testing"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	. "github.com/smartystreets/goconvey/convey"
)

func downtownOffice() building.Input {
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

func violatedField(err error) string {
	v, ok := apperr.AsValidation(err)
	if !ok {
		return ""
	}
	return v.Field
}

func TestInput_Validate(t *testing.T) {
	Convey("Given a building input", t, func() {
		in := downtownOffice()

		Convey("When every field is within bounds", func() {
			Convey("Then validation passes", func() {
				So(in.Validate(), ShouldBeNil)
			})
		})

		Convey("When optional fields are absent", func() {
			in.PropertyGFAParking = nil
			in.NumberofBuildings = nil
			in.ENERGYSTARScore = nil

			Convey("Then validation passes and defaults apply", func() {
				So(in.Validate(), ShouldBeNil)
				So(in.Parking(), ShouldEqual, 0)
				So(in.Buildings(), ShouldEqual, 1)
				_, known := in.EnergyStar()
				So(known, ShouldBeFalse)
			})
		})

		Convey("When the total floor area is below the lower bound", func() {
			in.PropertyGFATotal = 5000
			err := in.Validate()

			Convey("Then a validation error names the field", func() {
				So(errors.Is(err, apperr.ErrValidation), ShouldBeTrue)
				So(violatedField(err), ShouldEqual, building.FieldGFATotal)
			})
		})

		Convey("When the floor area sits exactly on an open bound", func() {
			Convey("Then both ends are rejected", func() {
				in.PropertyGFATotal = 10000
				So(violatedField(in.Validate()), ShouldEqual, building.FieldGFATotal)
				in.PropertyGFATotal = 10_000_000
				So(violatedField(in.Validate()), ShouldEqual, building.FieldGFATotal)
			})
		})

		Convey("When closed bounds are hit exactly", func() {
			in.NumberofFloors = 100
			in.YearBuilt = 1900
			in.Latitude = 47.8
			in.Longitude = -122.5
			in.ENERGYSTARScore = building.Float(0)

			Convey("Then validation passes", func() {
				So(in.Validate(), ShouldBeNil)
			})
		})

		Convey("When individual fields step out of bounds", func() {
			cases := []struct {
				field  string
				mutate func(*building.Input)
			}{
				{building.FieldFloors, func(b *building.Input) { b.NumberofFloors = 0 }},
				{building.FieldFloors, func(b *building.Input) { b.NumberofFloors = 101 }},
				{building.FieldYearBuilt, func(b *building.Input) { b.YearBuilt = 2025 }},
				{building.FieldPropertyType, func(b *building.Input) { b.PrimaryPropertyType = "  " }},
				{building.FieldNeighborhood, func(b *building.Input) { b.Neighborhood = "" }},
				{building.FieldLatitude, func(b *building.Input) { b.Latitude = 47.81 }},
				{building.FieldLongitude, func(b *building.Input) { b.Longitude = -122.1 }},
				{building.FieldParking, func(b *building.Input) { b.PropertyGFAParking = building.Float(-1) }},
				{building.FieldParking, func(b *building.Input) { b.PropertyGFAParking = building.Float(50001) }},
				{building.FieldBuildings, func(b *building.Input) { b.NumberofBuildings = building.Float(0.5) }},
				{building.FieldEnergyStar, func(b *building.Input) { b.ENERGYSTARScore = building.Float(100.5) }},
				{building.FieldGFATotal, func(b *building.Input) { b.PropertyGFATotal = math.NaN() }},
				{building.FieldLatitude, func(b *building.Input) { b.Latitude = math.Inf(1) }},
			}

			Convey("Then each violation is reported against its field", func() {
				for _, c := range cases {
					b := downtownOffice()
					c.mutate(&b)
					So(violatedField(b.Validate()), ShouldEqual, c.field)
				}
			})
		})

		Convey("When parking equals the total floor area", func() {
			in.PropertyGFAParking = building.Float(in.PropertyGFATotal)

			Convey("Then it is accepted", func() {
				So(in.Validate(), ShouldBeNil)
			})
		})
	})
}
