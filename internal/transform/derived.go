package transform

import (
	"math"

	"curatecli/internal/dataset"
)

// Tool wear category bounds, in minutes.
const (
	toolWearLowMax    = 100
	toolWearMediumMax = 200
)

// computeDerived adds the three derived features to each record, computed
// from the raw sensor values before any normalization:
//
//   - temperature difference: process minus air temperature
//   - power estimate: torque times angular velocity (rpm converted to rad/s)
//   - tool wear category: Low / Medium / High by accumulated wear time
func (t *Transformer) computeDerived(records []dataset.Record, record *Record) {
	for i := range records {
		rec := &records[i]
		rec.TempDifference = rec.ProcessTemperature - rec.AirTemperature
		rec.PowerEstimate = rec.Torque * rec.RotationalSpeed * 2 * math.Pi / 60
		rec.ToolWearCategory = toolWearCategory(rec.ToolWear)
	}

	record.DerivedFeatures = dataset.DerivedColumns()
	record.logStep("feature_engineering", map[string]interface{}{
		"derived_features": record.DerivedFeatures,
	})
}

func toolWearCategory(wear float64) string {
	switch {
	case wear <= toolWearLowMax:
		return "Low"
	case wear <= toolWearMediumMax:
		return "Medium"
	default:
		return "High"
	}
}
