package features

// Numeric feature names, in training column order.
const (
	GFATotal          = "PropertyGFATotal"
	GFABuildings      = "PropertyGFABuilding(s)"
	GFAParking        = "PropertyGFAParking"
	Floors            = "NumberofFloors"
	Buildings         = "NumberofBuildings"
	BuildingAge       = "BuildingAge"
	Latitude          = "Latitude"
	Longitude         = "Longitude"
	DistanceToCenter  = "DistanceToCenter"
	LargestUseGFA     = "LargestPropertyUseTypeGFA"
	NumberOfUses      = "NumberOfUses"
	PrimaryUseRatio   = "PrimaryUseRatio"
	SecondUseRatio    = "SecondUseRatio"
	ParkingRatio      = "ParkingRatio"
	AvgFloorArea      = "AvgFloorArea"
	EnergyStarImputed = "ENERGYSTARScore_Imputed"
	ComplexityScore   = "ComplexityScore"
)

// Binary feature names.
const (
	HasParking         = "HasParking"
	HasMultipleUses    = "HasMultipleUses"
	HasSecondUse       = "HasSecondUse"
	HasEnergyStar      = "HasENERGYSTAR"
	IsOldLargeBuilding = "IsOldLargeBuilding"
)

// Categorical feature names.
const (
	BuildingType           = "BuildingType"
	PrimaryPropertyType    = "PrimaryPropertyType"
	Neighborhood           = "Neighborhood"
	LargestPropertyUseType = "LargestPropertyUseType"
	AgeCategory            = "AgeCategory"
	LocationZone           = "LocationZone"
)

// Names lists produced feature names per group.
type Names struct {
	Numeric     []string `json:"numeric" yaml:"numeric"`
	Binary      []string `json:"binary" yaml:"binary"`
	Categorical []string `json:"categorical" yaml:"categorical"`
}

var (
	numericNames = []string{
		GFATotal, GFABuildings, GFAParking, Floors, Buildings, BuildingAge,
		Latitude, Longitude, DistanceToCenter, LargestUseGFA, NumberOfUses,
		PrimaryUseRatio, SecondUseRatio, ParkingRatio, AvgFloorArea,
		EnergyStarImputed, ComplexityScore,
	}
	binaryNames = []string{
		HasParking, HasMultipleUses, HasSecondUse, HasEnergyStar, IsOldLargeBuilding,
	}
	categoricalNames = []string{
		BuildingType, PrimaryPropertyType, Neighborhood, LargestPropertyUseType,
		AgeCategory, LocationZone,
	}
)

// DefaultNames returns the feature names the Deriver produces, in the
// order they were used at training time. The returned slices are copies.
func DefaultNames() Names {
	return Names{
		Numeric:     append([]string(nil), numericNames...),
		Binary:      append([]string(nil), binaryNames...),
		Categorical: append([]string(nil), categoricalNames...),
	}
}
