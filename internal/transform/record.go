package transform

import (
	"time"
)

// NormalizationParams are the exact fitted parameters for one sensor field,
// recorded so the transformation is invertible and auditable. Mean/Std are
// set for z-score fits, Min/Max for min-max fits.
type NormalizationParams struct {
	Field string  `json:"field"`
	Mean  float64 `json:"mean,omitempty"`
	Std   float64 `json:"std,omitempty"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
}

// AppliedStep is one entry of the ordered transformation log.
type AppliedStep struct {
	Operation  string                 `json:"operation"`
	AppliedAt  time.Time              `json:"applied_at"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Record captures everything the transformer did to derive the curated
// dataset: the outlier policy applied and the rows it affected, the fitted
// normalization parameters per field, and the derived features added. It is
// owned by the transformer and consumed by the provenance logger and the
// exporter.
type Record struct {
	OutlierPolicy   string                `json:"outlier_policy"`
	FlaggedRows     []int64               `json:"flagged_rows,omitempty"`
	RemovedRows     []int64               `json:"removed_rows,omitempty"`
	Normalization   string                `json:"normalization"`
	Params          []NormalizationParams `json:"normalization_params,omitempty"`
	DerivedFeatures []string              `json:"derived_features,omitempty"`
	Steps           []AppliedStep         `json:"steps"`
}

// ParamsFor returns the fitted parameters for one field.
func (r *Record) ParamsFor(field string) (NormalizationParams, bool) {
	for _, p := range r.Params {
		if p.Field == field {
			return p, true
		}
	}
	return NormalizationParams{}, false
}

func (r *Record) logStep(operation string, params map[string]interface{}) {
	r.Steps = append(r.Steps, AppliedStep{
		Operation:  operation,
		AppliedAt:  time.Now(),
		Parameters: params,
	})
}
