package quality

import (
	"context"
	"fmt"
	"log/slog"

	"curatecli/internal/dataset"
	"curatecli/internal/errors"
)

// Assessor computes the quality report for a dataset: completeness,
// duplicate rows, per-field outlier counts, correlations between the
// sensor fields, and the class balance of the failure label. Outliers are
// flagged, never removed; removal policy belongs to the transformer.
//
// The assessor is deterministic: the same dataset and rule always produce
// an identical report apart from the generation timestamp.
type Assessor struct {
	logger *slog.Logger
	rule   OutlierRule
}

// NewAssessor creates an Assessor with the given outlier rule.
func NewAssessor(logger *slog.Logger, rule OutlierRule) (*Assessor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch rule.Method {
	case "iqr", "zscore":
	default:
		return nil, errors.NewQualityError(
			fmt.Sprintf("unknown outlier method %q", rule.Method), nil)
	}
	if rule.Threshold <= 0 {
		return nil, errors.NewQualityError(
			fmt.Sprintf("outlier threshold must be positive, got %g", rule.Threshold), nil)
	}
	return &Assessor{logger: logger, rule: rule}, nil
}

// Assess produces the quality report for ds.
func (a *Assessor) Assess(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	report := &Report{
		RowCount:       ds.Len(),
		MissingByField: a.countMissing(ds),
		DuplicateRows:  a.countDuplicates(ds),
		Rule:           a.rule,
	}
	for _, n := range report.MissingByField {
		report.TotalMissing += n
	}

	for _, field := range dataset.SensorFields() {
		column := ds.SensorColumn(field)
		report.Summaries = append(report.Summaries, summarize(field, column))
		report.Outliers = append(report.Outliers, a.flagOutliers(ds, field, column))
	}

	report.Correlations = a.correlate(ds)
	report.FailureCount, report.FailureRate = a.classBalance(ds)

	a.logger.InfoContext(ctx, "quality assessment complete",
		slog.Int("rows", report.RowCount),
		slog.Int("missing_values", report.TotalMissing),
		slog.Int("duplicate_rows", report.DuplicateRows),
		slog.Int("outlier_rows", len(report.OutlierRows())),
		slog.String("outlier_method", a.rule.Method),
		slog.Float64("failure_rate", report.FailureRate))

	return report, nil
}

// countMissing aggregates the ingestion-time missing cells per field. Every
// schema field appears in the map so "expected zero" is visible per field.
func (a *Assessor) countMissing(ds *dataset.Dataset) map[string]int {
	counts := make(map[string]int, len(dataset.Columns()))
	for _, col := range dataset.Columns() {
		counts[col] = 0
	}
	for _, cell := range ds.MissingCells() {
		counts[cell.Field]++
	}
	return counts
}

// countDuplicates counts rows that duplicate an earlier row via full-row
// equality.
func (a *Assessor) countDuplicates(ds *dataset.Dataset) int {
	seen := make(map[dataset.Record]struct{}, ds.Len())
	duplicates := 0
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		if _, ok := seen[rec]; ok {
			duplicates++
			continue
		}
		seen[rec] = struct{}{}
	}
	return duplicates
}

// flagOutliers applies the configured rule to one sensor column.
func (a *Assessor) flagOutliers(ds *dataset.Dataset, field string, column []float64) FieldOutliers {
	var lower, upper float64

	switch a.rule.Method {
	case "iqr":
		q1 := Quantile(column, 0.25)
		q3 := Quantile(column, 0.75)
		iqr := q3 - q1
		lower = q1 - a.rule.Threshold*iqr
		upper = q3 + a.rule.Threshold*iqr
	case "zscore":
		mean := Mean(column)
		std := StdDev(column)
		lower = mean - a.rule.Threshold*std
		upper = mean + a.rule.Threshold*std
	}

	out := FieldOutliers{
		Field:      field,
		LowerBound: lower,
		UpperBound: upper,
	}
	for i, v := range column {
		if v < lower || v > upper {
			out.Count++
			out.RowIDs = append(out.RowIDs, ds.Record(i).UDI)
		}
	}
	if len(column) > 0 {
		out.Percentage = float64(out.Count) / float64(len(column)) * 100
	}
	return out
}

// correlate computes the Pearson coefficient for every pair of sensor
// fields, in canonical field order.
func (a *Assessor) correlate(ds *dataset.Dataset) []CorrelationPair {
	fields := dataset.SensorFields()
	columns := make(map[string][]float64, len(fields))
	for _, f := range fields {
		columns[f] = ds.SensorColumn(f)
	}

	var pairs []CorrelationPair
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			pairs = append(pairs, CorrelationPair{
				FieldA:      fields[i],
				FieldB:      fields[j],
				Coefficient: Pearson(columns[fields[i]], columns[fields[j]]),
			})
		}
	}
	return pairs
}

// classBalance reports the failure-label skew, relevant to downstream
// modeling rather than this pipeline's own correctness.
func (a *Assessor) classBalance(ds *dataset.Dataset) (int, float64) {
	failures := 0
	for i := 0; i < ds.Len(); i++ {
		if ds.Record(i).MachineFailure != 0 {
			failures++
		}
	}
	if ds.Len() == 0 {
		return 0, 0
	}
	return failures, float64(failures) / float64(ds.Len()) * 100
}

// summarize computes descriptive statistics for one sensor column.
func summarize(field string, column []float64) FieldSummary {
	min, max := MinMax(column)
	return FieldSummary{
		Field:  field,
		Count:  len(column),
		Mean:   Mean(column),
		Std:    StdDev(column),
		Min:    min,
		Q1:     Quantile(column, 0.25),
		Median: Quantile(column, 0.5),
		Q3:     Quantile(column, 0.75),
		Max:    max,
	}
}
