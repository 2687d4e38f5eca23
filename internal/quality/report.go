package quality

// OutlierRule records the statistical rule used for outlier flagging so the
// quality report is reproducible.
type OutlierRule struct {
	Method    string  `json:"method"`    // "iqr" or "zscore"
	Threshold float64 `json:"threshold"` // IQR fence multiplier or z-score cutoff
}

// FieldOutliers summarizes outliers flagged in one sensor field.
type FieldOutliers struct {
	Field      string  `json:"field"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	RowIDs     []int64 `json:"row_ids,omitempty"`
}

// FieldSummary carries per-field descriptive statistics for the summary
// statistics export.
type FieldSummary struct {
	Field  string  `json:"field"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// CorrelationPair is the Pearson coefficient for one pair of sensor fields.
type CorrelationPair struct {
	FieldA      string  `json:"field_a"`
	FieldB      string  `json:"field_b"`
	Coefficient float64 `json:"coefficient"`
}

// Report is the derived, read-only quality summary of a dataset. It is
// created once per run and never modified afterwards.
type Report struct {
	RowCount       int               `json:"row_count"`
	MissingByField map[string]int    `json:"missing_by_field"`
	TotalMissing   int               `json:"total_missing"`
	DuplicateRows  int               `json:"duplicate_rows"`
	Rule           OutlierRule       `json:"outlier_rule"`
	Outliers       []FieldOutliers   `json:"outliers"`
	Summaries      []FieldSummary    `json:"summaries"`
	Correlations   []CorrelationPair `json:"correlations"`
	FailureCount   int               `json:"failure_count"`
	FailureRate    float64           `json:"failure_rate"`
}

// OutlierRows returns the union of row identifiers flagged in any field.
func (r *Report) OutlierRows() []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, fo := range r.Outliers {
		for _, id := range fo.RowIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
