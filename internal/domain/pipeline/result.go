package pipeline

import (
	"math"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/artifacts"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/features"
)

// KWhPerKBTU converts kBTU to kWh.
const KWhPerKBTU = 0.293071

// StatusSuccess is the status of every assembled result.
const StatusSuccess = "success"

// Result is the response for one building.
type Result struct {
	Status           string       `json:"status"`
	RequestID        string       `json:"request_id,omitempty"`
	Prediction       Prediction   `json:"prediction"`
	BuildingInfo     BuildingInfo `json:"building_info"`
	ModelPerformance Performance  `json:"model_performance"`
	Model            ModelRef     `json:"model"`
}

// Prediction is the estimate in three units.
type Prediction struct {
	ConsumptionKBTU float64 `json:"consumption_kbtu"`
	ConsumptionKWh  float64 `json:"consumption_kwh"`
	ConsumptionMWh  float64 `json:"consumption_mwh"`
}

// BuildingInfo echoes selected derived features.
type BuildingInfo struct {
	AgeYears           int     `json:"age_years"`
	AgeCategory        string  `json:"age_category"`
	DistanceToCenterKm float64 `json:"distance_to_center_km"`
	LocationZone       string  `json:"location_zone"`
	HasParking         bool    `json:"has_parking"`
	HasEnergyStar      bool    `json:"has_energy_star"`
}

// Performance is the offline evaluation of the model.
type Performance struct {
	R2   float64 `json:"r2_score"`
	MAE  float64 `json:"mae_kbtu"`
	Note string  `json:"note"`
}

// ModelRef identifies the model version that produced a result.
type ModelRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Assemble formats a raw estimate and its features into a Result.
func Assemble(kbtu float64, v features.Vector, info artifacts.ModelInfo) Result {
	kwh := kbtu * KWhPerKBTU
	return Result{
		Status: StatusSuccess,
		Prediction: Prediction{
			ConsumptionKBTU: kbtu,
			ConsumptionKWh:  kwh,
			ConsumptionMWh:  kwh / 1000,
		},
		BuildingInfo: BuildingInfo{
			AgeYears:           int(v.Numeric[features.BuildingAge]),
			AgeCategory:        v.Categorical[features.AgeCategory],
			DistanceToCenterKm: round2(v.Numeric[features.DistanceToCenter]),
			LocationZone:       v.Categorical[features.LocationZone],
			HasParking:         v.Flag(features.HasParking),
			HasEnergyStar:      v.Flag(features.HasEnergyStar),
		},
		ModelPerformance: Performance{
			R2:   info.R2,
			MAE:  info.MAE,
			Note: info.Note,
		},
		Model: ModelRef{Name: info.Name, Version: info.Version},
	}
}

// round2 rounds halves away from zero, unlike Python's round, which rounds
// exact binary ties such as 0.125 to even.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
