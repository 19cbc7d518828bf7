package loadgen

import (
	"fmt"
	"math"
	"net/http"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
)

// VerifyResult checks the unit conversion law and the status of a
// successful prediction.
func VerifyResult(res pipeline.Result) error {
	if res.Status != pipeline.StatusSuccess {
		return fmt.Errorf("status %q, want %q", res.Status, pipeline.StatusSuccess)
	}
	p := res.Prediction
	if math.IsNaN(p.ConsumptionKBTU) || math.IsInf(p.ConsumptionKBTU, 0) {
		return fmt.Errorf("consumption_kbtu is not finite: %v", p.ConsumptionKBTU)
	}
	tol := ConversionTolerance * math.Max(1, math.Abs(p.ConsumptionKBTU))
	if want := p.ConsumptionKBTU * pipeline.KWhPerKBTU; math.Abs(p.ConsumptionKWh-want) > tol {
		return fmt.Errorf("consumption_kwh %v, want %v", p.ConsumptionKWh, want)
	}
	if want := p.ConsumptionKWh / 1000; math.Abs(p.ConsumptionMWh-want) > tol {
		return fmt.Errorf("consumption_mwh %v, want %v", p.ConsumptionMWh, want)
	}
	return nil
}

// verifyOutcomes tallies outcomes into stats. Every successful answer must
// satisfy VerifyResult and echo its request id. Requests never sent have no
// RequestID and are skipped.
func verifyOutcomes(outcomes []Outcome, stats *Stats) error {
	stats.Versions = make(map[string]int)
	var first error
	for _, o := range outcomes {
		switch {
		case o.RequestID == "":
			continue
		case o.Err == nil:
			stats.Successful++
			stats.Versions[o.Result.Model.Version]++
			err := VerifyResult(o.Result)
			if err == nil && o.Result.RequestID != o.RequestID {
				err = fmt.Errorf("request id %q, want %q", o.Result.RequestID, o.RequestID)
			}
			if err != nil {
				stats.Violations++
				if first == nil {
					first = fmt.Errorf("request %s: %w", o.RequestID, err)
				}
			}
		case o.Status >= http.StatusBadRequest && o.Status < http.StatusInternalServerError:
			stats.Rejected++
		default:
			stats.Failed++
		}
	}
	return first
}
