package operations

import (
	"context"
	"fmt"
	"log/slog"

	"curatecli/internal/config"
	"curatecli/internal/dataset"
	"curatecli/internal/exporter"
	"curatecli/internal/provenance"
	"curatecli/internal/quality"
	"curatecli/internal/transform"
	"curatecli/internal/validation"
)

// Step identifiers, in pipeline order.
const (
	StepIDIngest    = "ingest"
	StepIDValidate  = "validate"
	StepIDAssess    = "assess"
	StepIDTransform = "transform"
	StepIDExport    = "export"
)

// Provenance entity names.
const (
	entityRawDataset     = "raw_dataset"
	entityQualityReport  = "quality_report"
	entityCuratedDataset = "curated_dataset"
	entityArtifacts      = "exported_artifacts"
)

// ai4iSource describes where the raw dataset comes from. Recorded on the
// provenance log during ingestion.
var ai4iSource = provenance.SourceInfo{
	Title:           "AI4I 2020 Predictive Maintenance Dataset",
	SourceURL:       "https://archive.ics.uci.edu/dataset/601/ai4i+2020+predictive+maintenance+dataset",
	DOI:             "10.24432/C5HS5C",
	License:         "CC BY 4.0",
	OriginalAuthors: "Stephan Matzka",
}

// RegisterPipelineSteps registers the five curation steps in execution
// order.
func RegisterPipelineSteps(m *Manager, logger *slog.Logger, cfg *config.Config) error {
	paths := cfg.ResolvedPaths()
	steps := []Step{
		NewIngestStep(logger, paths.InputFile),
		NewValidateStep(logger, cfg.Pipeline.Strict),
		NewAssessStep(logger, quality.OutlierRule{
			Method:    cfg.Pipeline.OutlierMethod,
			Threshold: cfg.Pipeline.OutlierThreshold,
		}),
		NewTransformStep(logger, transform.Config{
			OutlierPolicy:   cfg.Pipeline.OutlierPolicy,
			Normalization:   cfg.Pipeline.Normalization,
			DerivedFeatures: cfg.Pipeline.DerivedFeatures,
		}),
		NewExportStep(logger, paths),
	}
	for _, step := range steps {
		if err := m.RegisterStep(step); err != nil {
			return err
		}
	}
	return nil
}

// IngestStep loads the raw CSV into a typed dataset.
type IngestStep struct {
	logger    *slog.Logger
	inputFile string
}

func NewIngestStep(logger *slog.Logger, inputFile string) *IngestStep {
	return &IngestStep{logger: logger, inputFile: inputFile}
}

func (s *IngestStep) ID() string   { return StepIDIngest }
func (s *IngestStep) Name() string { return "Ingestion" }

func (s *IngestStep) Validate(state *RunState) error {
	if s.inputFile == "" {
		return fmt.Errorf("input file not configured")
	}
	return nil
}

func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	ds, err := dataset.Load(s.inputFile, s.logger)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyRawDataset, ds)

	if err := state.Provenance.SetSource(ai4iSource); err != nil {
		return err
	}
	return state.Provenance.Record(entityRawDataset, "ingest", state.Agent,
		map[string]interface{}{
			"input_file":    s.inputFile,
			"rows":          ds.Len(),
			"missing_cells": len(ds.MissingCells()),
		})
}

// ValidateStep checks the raw dataset against the expected schema.
type ValidateStep struct {
	logger *slog.Logger
	strict bool
}

func NewValidateStep(logger *slog.Logger, strict bool) *ValidateStep {
	return &ValidateStep{logger: logger, strict: strict}
}

func (s *ValidateStep) ID() string   { return StepIDValidate }
func (s *ValidateStep) Name() string { return "Schema Validation" }

func (s *ValidateStep) Validate(state *RunState) error {
	return requireDataset(state, ContextKeyRawDataset)
}

func (s *ValidateStep) Execute(ctx context.Context, state *RunState) error {
	ds := mustDataset(state, ContextKeyRawDataset)

	validator := validation.New(s.logger,
		validation.WithStrict(s.strict),
		validation.WithExpectedRows(dataset.ExpectedRows))

	result, err := validator.Validate(ctx, ds)
	if result != nil {
		state.SetContext(ContextKeyValidation, result)

		checkErr := state.Provenance.AddQualityCheck("schema_validation", result.Passed(),
			map[string]interface{}{
				"row_count":  result.RowCount,
				"violations": len(result.Violations),
				"strict":     result.Strict,
			})
		if checkErr != nil {
			return checkErr
		}
	}
	if err != nil {
		return err
	}

	return state.Provenance.Record(entityRawDataset, "validate", state.Agent,
		map[string]interface{}{
			"violations": len(result.Violations),
			"strict":     s.strict,
		})
}

// AssessStep computes the statistical quality report.
type AssessStep struct {
	logger *slog.Logger
	rule   quality.OutlierRule
}

func NewAssessStep(logger *slog.Logger, rule quality.OutlierRule) *AssessStep {
	return &AssessStep{logger: logger, rule: rule}
}

func (s *AssessStep) ID() string   { return StepIDAssess }
func (s *AssessStep) Name() string { return "Quality Assessment" }

func (s *AssessStep) Validate(state *RunState) error {
	return requireDataset(state, ContextKeyRawDataset)
}

func (s *AssessStep) Execute(ctx context.Context, state *RunState) error {
	ds := mustDataset(state, ContextKeyRawDataset)

	assessor, err := quality.NewAssessor(s.logger, s.rule)
	if err != nil {
		return err
	}
	report, err := assessor.Assess(ctx, ds)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyQualityReport, report)

	outliers := len(report.OutlierRows())
	if err := state.Provenance.AddQualityCheck("quality_assessment", true,
		map[string]interface{}{
			"duplicate_rows": report.DuplicateRows,
			"total_missing":  report.TotalMissing,
			"outlier_rows":   outliers,
		}); err != nil {
		return err
	}

	return state.Provenance.Record(entityQualityReport, "assess", state.Agent,
		map[string]interface{}{
			"outlier_method":    s.rule.Method,
			"outlier_threshold": s.rule.Threshold,
			"outlier_rows":      outliers,
		})
}

// TransformStep applies the outlier policy, derived features, and
// normalization to produce the curated dataset.
type TransformStep struct {
	logger *slog.Logger
	cfg    transform.Config
}

func NewTransformStep(logger *slog.Logger, cfg transform.Config) *TransformStep {
	return &TransformStep{logger: logger, cfg: cfg}
}

func (s *TransformStep) ID() string   { return StepIDTransform }
func (s *TransformStep) Name() string { return "Transformation" }

func (s *TransformStep) Validate(state *RunState) error {
	if err := requireDataset(state, ContextKeyRawDataset); err != nil {
		return err
	}
	if _, ok := state.GetContext(ContextKeyQualityReport); !ok {
		return fmt.Errorf("quality report not available")
	}
	return nil
}

func (s *TransformStep) Execute(ctx context.Context, state *RunState) error {
	ds := mustDataset(state, ContextKeyRawDataset)
	reportVal, _ := state.GetContext(ContextKeyQualityReport)
	report := reportVal.(*quality.Report)

	transformer, err := transform.New(s.logger, s.cfg)
	if err != nil {
		return err
	}
	curated, record, err := transformer.Apply(ctx, ds, report)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyCuratedDataset, curated)
	state.SetContext(ContextKeyTransformLog, record)

	return state.Provenance.Record(entityCuratedDataset, "transform", state.Agent,
		map[string]interface{}{
			"outlier_policy": record.OutlierPolicy,
			"normalization":  record.Normalization,
			"removed_rows":   len(record.RemovedRows),
			"output_rows":    curated.Len(),
		})
}

// ExportStep writes every artifact and finalizes the provenance log. The
// export lineage event is recorded before the log is exported so the
// provenance record covers its own export.
type ExportStep struct {
	logger *slog.Logger
	paths  *config.Paths
}

func NewExportStep(logger *slog.Logger, paths *config.Paths) *ExportStep {
	return &ExportStep{logger: logger, paths: paths}
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return "Export" }

func (s *ExportStep) Validate(state *RunState) error {
	if err := requireDataset(state, ContextKeyCuratedDataset); err != nil {
		return err
	}
	for _, key := range []string{ContextKeyValidation, ContextKeyQualityReport, ContextKeyTransformLog} {
		if _, ok := state.GetContext(key); !ok {
			return fmt.Errorf("missing run context %s", key)
		}
	}
	return nil
}

func (s *ExportStep) Execute(ctx context.Context, state *RunState) error {
	curated := mustDataset(state, ContextKeyCuratedDataset)
	validationVal, _ := state.GetContext(ContextKeyValidation)
	reportVal, _ := state.GetContext(ContextKeyQualityReport)
	recordVal, _ := state.GetContext(ContextKeyTransformLog)

	if err := state.Provenance.Record(entityArtifacts, "export", state.Agent,
		map[string]interface{}{
			"output_dir":   s.paths.OutputDir,
			"metadata_dir": s.paths.MetadataDir,
			"rows":         curated.Len(),
		}); err != nil {
		return err
	}

	graph, err := state.Provenance.Export()
	if err != nil {
		return err
	}

	exp := exporter.New(s.logger, s.paths)
	manifest, err := exp.ExportAll(ctx, exporter.Inputs{
		Curated:    curated,
		Validation: validationVal.(*validation.Result),
		Quality:    reportVal.(*quality.Report),
		Transform:  recordVal.(*transform.Record),
		Lineage:    graph,
	})
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyManifest, manifest)

	s.logger.InfoContext(ctx, "artifacts written",
		slog.Int("count", len(manifest.Entries)),
		slog.String("output_dir", s.paths.OutputDir))
	return nil
}

// requireDataset checks that a dataset is present under the given key.
func requireDataset(state *RunState, key string) error {
	val, ok := state.GetContext(key)
	if !ok {
		return fmt.Errorf("missing run context %s", key)
	}
	if _, ok := val.(*dataset.Dataset); !ok {
		return fmt.Errorf("run context %s is not a dataset", key)
	}
	return nil
}

// mustDataset returns the dataset stored under key. Callers run Validate
// first, so the assertion cannot fail during normal execution.
func mustDataset(state *RunState, key string) *dataset.Dataset {
	val, _ := state.GetContext(key)
	return val.(*dataset.Dataset)
}

// Manifest returns the export manifest from a completed run state.
func Manifest(state *RunState) (*exporter.Manifest, bool) {
	val, ok := state.GetContext(ContextKeyManifest)
	if !ok {
		return nil, false
	}
	m, ok := val.(*exporter.Manifest)
	return m, ok
}
