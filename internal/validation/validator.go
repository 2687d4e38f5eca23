package validation

import (
	"context"
	"fmt"
	"log/slog"

	"curatecli/internal/dataset"
	"curatecli/internal/errors"
)

// ViolationKind classifies schema violations.
type ViolationKind string

const (
	KindRowCount          ViolationKind = "row_count"
	KindMissingValue      ViolationKind = "missing_value"
	KindOutOfRange        ViolationKind = "out_of_range"
	KindUnexpectedValue   ViolationKind = "unexpected_categorical_value"
	KindInvalidFlag       ViolationKind = "invalid_flag"
	KindDuplicateID       ViolationKind = "duplicate_identifier"
	KindFlagInconsistency ViolationKind = "failure_flag_inconsistency"
)

// Violation names the field, the row identifier, and the nature of one
// schema contract breach.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	RowID   int64         `json:"row_id,omitempty"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	if v.RowID != 0 || v.Field != "" {
		return fmt.Sprintf("%s: row %d, field %q: %s", v.Kind, v.RowID, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Result collects the violations found during one validation pass.
type Result struct {
	RowCount   int         `json:"row_count"`
	Violations []Violation `json:"violations"`
	Strict     bool        `json:"strict"`
}

// Passed reports whether the dataset satisfied the schema contract.
func (r *Result) Passed() bool {
	return len(r.Violations) == 0
}

// Validator checks a dataset against the expected column contract: value
// ranges for sensor fields, the categorical variant set, binary flags, and
// the aggregate-failure consistency rule. It never mutates the dataset.
type Validator struct {
	logger       *slog.Logger
	strict       bool
	expectedRows int
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrict makes validation fail with a SCHEMA error when any violation
// is found, instead of returning the violations for reporting.
func WithStrict(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// WithExpectedRows overrides the expected row count. Zero disables the
// row-count check.
func WithExpectedRows(n int) Option {
	return func(v *Validator) { v.expectedRows = n }
}

// New creates a Validator with the default expected row count.
func New(logger *slog.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{
		logger:       logger,
		expectedRows: dataset.ExpectedRows,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks ds against the expected schema and returns the collected
// violations in deterministic row-then-field order. In strict mode a
// non-empty violation list is returned as a SCHEMA error.
func (v *Validator) Validate(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	result := &Result{
		RowCount: ds.Len(),
		Strict:   v.strict,
	}

	if v.expectedRows > 0 && ds.Len() != v.expectedRows {
		result.Violations = append(result.Violations, Violation{
			Kind:    KindRowCount,
			Message: fmt.Sprintf("expected %d rows, found %d", v.expectedRows, ds.Len()),
		})
	}

	for _, cell := range ds.MissingCells() {
		rowID := int64(0)
		if cell.RowIndex >= 1 && cell.RowIndex <= ds.Len() {
			rowID = ds.Record(cell.RowIndex - 1).UDI
		}
		result.Violations = append(result.Violations, Violation{
			Kind:    KindMissingValue,
			RowID:   rowID,
			Field:   cell.Field,
			Message: "value is missing",
		})
	}

	seen := make(map[int64]struct{}, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)

		if _, dup := seen[rec.UDI]; dup {
			result.Violations = append(result.Violations, Violation{
				Kind:    KindDuplicateID,
				RowID:   rec.UDI,
				Field:   dataset.ColUDI,
				Message: fmt.Sprintf("identifier %d occurs more than once", rec.UDI),
			})
		}
		seen[rec.UDI] = struct{}{}

		result.Violations = append(result.Violations, v.checkRow(rec)...)
	}

	v.logger.InfoContext(ctx, "schema validation complete",
		slog.Int("rows", result.RowCount),
		slog.Int("violations", len(result.Violations)),
		slog.Bool("strict", v.strict))

	if v.strict && !result.Passed() {
		first := result.Violations[0]
		return result, errors.NewSchemaError(
			fmt.Sprintf("strict validation failed with %d violation(s), first: %s",
				len(result.Violations), first.String()), nil).
			WithContext("violations", len(result.Violations))
	}

	return result, nil
}

// checkRow validates one record against the field specs.
func (v *Validator) checkRow(rec dataset.Record) []Violation {
	var out []Violation

	if !contains(dataset.QualityVariants, rec.Type) {
		out = append(out, Violation{
			Kind:    KindUnexpectedValue,
			RowID:   rec.UDI,
			Field:   dataset.ColType,
			Message: fmt.Sprintf("value %q not in %v", rec.Type, dataset.QualityVariants),
		})
	}

	for _, field := range dataset.SensorFields() {
		spec, ok := dataset.SchemaField(field)
		if !ok || !spec.HasRange {
			continue
		}
		value, _ := rec.SensorValue(field)
		if value < spec.Min || value > spec.Max {
			out = append(out, Violation{
				Kind:    KindOutOfRange,
				RowID:   rec.UDI,
				Field:   field,
				Message: fmt.Sprintf("value %g outside valid range %s", value, spec.RangeString()),
			})
		}
	}

	flags := map[string]int{
		dataset.ColMachineFailure: rec.MachineFailure,
		dataset.ColTWF:            rec.TWF,
		dataset.ColHDF:            rec.HDF,
		dataset.ColPWF:            rec.PWF,
		dataset.ColOSF:            rec.OSF,
		dataset.ColRNF:            rec.RNF,
	}
	for _, field := range append([]string{dataset.ColMachineFailure}, dataset.FailureModeFields()...) {
		if flag := flags[field]; flag != 0 && flag != 1 {
			out = append(out, Violation{
				Kind:    KindInvalidFlag,
				RowID:   rec.UDI,
				Field:   field,
				Message: fmt.Sprintf("flag value %d not in {0, 1}", flag),
			})
		}
	}

	if !rec.AggregateFlagConsistent() {
		out = append(out, Violation{
			Kind:    KindFlagInconsistency,
			RowID:   rec.UDI,
			Field:   dataset.ColMachineFailure,
			Message: fmt.Sprintf("aggregate flag %d does not equal OR of mode flags %d",
				rec.MachineFailure, rec.FailureModeOR()),
		})
	}

	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
