// Package classify maps continuous quantities onto the ordered label sets
// the categorical encoder was fitted on.
package classify

// Age bracket upper bounds in years, inclusive.
const (
	veryRecentMaxAge = 20
	recentMaxAge     = 50
	oldMaxAge        = 80
)

// Distance zone upper bounds in kilometers, inclusive.
const (
	centerMaxKm = 2
	nearMaxKm   = 5
)

// AgeCategory is a building age bracket. The value is the label used at
// training time and is what the encoder sees.
type AgeCategory string

// Age brackets, youngest first.
const (
	VeryRecent AgeCategory = "Très récent"
	Recent     AgeCategory = "Récent"
	Old        AgeCategory = "Ancien"
	VeryOld    AgeCategory = "Très ancien"
)

// AgeCategories lists every bracket in order.
var AgeCategories = []AgeCategory{VeryRecent, Recent, Old, VeryOld}

// Code returns a stable ASCII identifier for the bracket.
func (c AgeCategory) Code() string {
	switch c {
	case VeryRecent:
		return "VeryRecent"
	case Recent:
		return "Recent"
	case Old:
		return "Old"
	case VeryOld:
		return "VeryOld"
	default:
		return "Unknown"
	}
}

// LocationZone is a distance-to-center bracket, valued with its training label.
type LocationZone string

// Location zones, closest first.
const (
	Center    LocationZone = "Centre"
	Near      LocationZone = "Proche"
	Periphery LocationZone = "Périphérie"
)

// LocationZones lists every zone in order.
var LocationZones = []LocationZone{Center, Near, Periphery}

// Code returns a stable ASCII identifier for the zone.
func (z LocationZone) Code() string {
	switch z {
	case Center:
		return "Center"
	case Near:
		return "Near"
	case Periphery:
		return "Periphery"
	default:
		return "Unknown"
	}
}

// Age returns the bracket for a building age in years. Negative ages fall
// into VeryRecent; NaN falls through to VeryOld.
func Age(years float64) AgeCategory {
	switch {
	case years <= veryRecentMaxAge:
		return VeryRecent
	case years <= recentMaxAge:
		return Recent
	case years <= oldMaxAge:
		return Old
	default:
		return VeryOld
	}
}

// Zone returns the location zone for a distance to the city center in km.
// NaN falls through to Periphery.
func Zone(km float64) LocationZone {
	switch {
	case km <= centerMaxKm:
		return Center
	case km <= nearMaxKm:
		return Near
	default:
		return Periphery
	}
}
