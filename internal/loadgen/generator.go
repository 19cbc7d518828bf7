package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/google/uuid"
)

const randomFloatDivisor = 1_000_000

// Shares of generated buildings that carry each optional field.
const (
	parkingShare    = 0.4
	energyStarShare = 0.6
	campusShare     = 0.1
)

// Categories seen in the 2016 benchmarking data.
var (
	propertyTypes = []string{
		"Office", "Hotel", "Hospital", "K-12 School", "Retail Store",
		"Warehouse", "Mixed Use Property", "Small- and Mid-Sized Office",
		"Large Office", "Supermarket / Grocery Store", "University",
	}
	neighborhoods = []string{
		"DOWNTOWN", "BALLARD", "NORTHEAST", "NORTHWEST", "EAST",
		"CENTRAL", "LAKE UNION", "MAGNOLIA / QUEEN ANNE", "GREATER DUWAMISH",
		"SOUTHEAST", "SOUTHWEST", "NORTH", "DELRIDGE",
	}
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func between(lo, hi float64) float64 {
	return lo + getRandomFloat()*(hi-lo)
}

func pick(values []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(values))))
	return values[n.Int64()]
}

// RandomBuilding returns a building that satisfies every input bound.
func RandomBuilding() building.Input {
	// Keep away from the open floor area bounds.
	total := between(building.MinGFATotal+1, 2_000_000)
	in := building.Input{
		PropertyGFATotal:    total,
		NumberofFloors:      int(between(building.MinFloors, building.MaxFloors+1)),
		YearBuilt:           int(between(building.MinYearBuilt, building.MaxYearBuilt+1)),
		PrimaryPropertyType: pick(propertyTypes),
		Neighborhood:        pick(neighborhoods),
		Latitude:            between(building.MinLatitude, building.MaxLatitude),
		Longitude:           between(building.MinLongitude, building.MaxLongitude),
	}
	if getRandomFloat() < parkingShare {
		in.PropertyGFAParking = building.Float(between(0, total/2))
	}
	if getRandomFloat() < campusShare {
		in.NumberofBuildings = building.Float(float64(int(between(2, 10))))
	}
	if getRandomFloat() < energyStarShare {
		in.ENERGYSTARScore = building.Float(float64(int(between(building.MinEnergyStar, building.MaxEnergyStar+1))))
	}
	return in
}

// generateRequests creates the configured number of requests with unique ids.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]Request, error) {
	logger.Get().Info(ctx, "generating buildings", logger.Int("requests", config.Requests))

	requests := make([]Request, config.Requests)
	for i := range requests {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		requests[i] = Request{RequestID: uuid.NewString(), Building: RandomBuilding()}
	}

	stats.Generated = len(requests)
	return requests, nil
}
