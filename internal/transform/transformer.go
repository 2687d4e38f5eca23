package transform

import (
	"context"
	"fmt"
	"log/slog"

	"curatecli/internal/config"
	"curatecli/internal/dataset"
	"curatecli/internal/errors"
	"curatecli/internal/quality"
)

// Config selects the transformations to apply.
type Config struct {
	OutlierPolicy   string // "retain" or "remove"
	Normalization   string // "none", "minmax", or "zscore"
	DerivedFeatures bool
}

// Transformer derives the curated dataset: applies the configured outlier
// policy using the quality report's flags, optionally computes derived
// features, and fits-and-applies normalization per sensor field. The input
// dataset is never mutated; every run produces a new Dataset and a Record
// of the parameters used.
type Transformer struct {
	logger *slog.Logger
	cfg    Config
}

// New creates a Transformer. Unknown option values are rejected here so a
// bad configuration fails before any data is touched.
func New(logger *slog.Logger, cfg Config) (*Transformer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.OutlierPolicy {
	case config.OutlierPolicyRetain, config.OutlierPolicyRemove:
	default:
		return nil, errors.NewTransformError(
			fmt.Sprintf("unknown outlier policy %q", cfg.OutlierPolicy), nil)
	}
	switch cfg.Normalization {
	case config.NormalizationNone, config.NormalizationMinMax, config.NormalizationZScore:
	default:
		return nil, errors.NewTransformError(
			fmt.Sprintf("unknown normalization method %q", cfg.Normalization), nil)
	}
	return &Transformer{logger: logger, cfg: cfg}, nil
}

// Apply transforms ds into the curated dataset. The quality report supplies
// the outlier flags; normalization parameters are fit on the dataset being
// transformed, after outlier removal when the remove policy is active.
func (t *Transformer) Apply(ctx context.Context, ds *dataset.Dataset, report *quality.Report) (*dataset.Dataset, *Record, error) {
	record := &Record{
		OutlierPolicy: t.cfg.OutlierPolicy,
		Normalization: t.cfg.Normalization,
		FlaggedRows:   report.OutlierRows(),
	}

	records := ds.Clone()

	if t.cfg.OutlierPolicy == config.OutlierPolicyRemove {
		records = t.removeOutliers(records, record)
	} else {
		record.logStep("outlier_policy", map[string]interface{}{
			"policy":       config.OutlierPolicyRetain,
			"flagged_rows": len(record.FlaggedRows),
		})
	}

	if t.cfg.DerivedFeatures {
		t.computeDerived(records, record)
	}

	if t.cfg.Normalization != config.NormalizationNone {
		if err := t.normalize(records, record); err != nil {
			return nil, nil, err
		}
	} else {
		record.logStep("normalization", map[string]interface{}{
			"method": config.NormalizationNone,
		})
	}

	curated := ds.Derive(records)

	t.logger.InfoContext(ctx, "transformation complete",
		slog.String("outlier_policy", t.cfg.OutlierPolicy),
		slog.String("normalization", t.cfg.Normalization),
		slog.Int("rows_in", ds.Len()),
		slog.Int("rows_out", curated.Len()),
		slog.Int("rows_removed", len(record.RemovedRows)),
		slog.Bool("derived_features", t.cfg.DerivedFeatures))

	return curated, record, nil
}

// removeOutliers drops every row flagged in any sensor field.
func (t *Transformer) removeOutliers(records []dataset.Record, record *Record) []dataset.Record {
	flagged := make(map[int64]struct{}, len(record.FlaggedRows))
	for _, id := range record.FlaggedRows {
		flagged[id] = struct{}{}
	}

	kept := records[:0]
	for _, rec := range records {
		if _, drop := flagged[rec.UDI]; drop {
			record.RemovedRows = append(record.RemovedRows, rec.UDI)
			continue
		}
		kept = append(kept, rec)
	}

	record.logStep("outlier_policy", map[string]interface{}{
		"policy":       config.OutlierPolicyRemove,
		"flagged_rows": len(record.FlaggedRows),
		"removed_rows": len(record.RemovedRows),
	})
	return kept
}

// normalize fits the configured method per sensor field and applies it in
// place on the cloned records.
func (t *Transformer) normalize(records []dataset.Record, record *Record) error {
	for _, field := range dataset.SensorFields() {
		column := make([]float64, len(records))
		for i := range records {
			v, _ := records[i].SensorValue(field)
			column[i] = v
		}

		params, apply, err := fit(t.cfg.Normalization, field, column)
		if err != nil {
			return err
		}
		record.Params = append(record.Params, params)

		for i := range records {
			v, _ := records[i].SensorValue(field)
			records[i].SetSensorValue(field, apply(v))
		}
	}

	record.logStep("normalization", map[string]interface{}{
		"method": t.cfg.Normalization,
		"fields": dataset.SensorFields(),
	})
	return nil
}
