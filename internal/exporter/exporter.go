package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"curatecli/internal/config"
	"curatecli/internal/dataset"
	"curatecli/internal/errors"
	"curatecli/internal/provenance"
	"curatecli/internal/quality"
	"curatecli/internal/transform"
	"curatecli/internal/validation"
)

// Artifact file names.
const (
	FileCuratedCSV     = "ai4i2020_curated.csv"
	FileCuratedXLSX    = "ai4i2020_curated.xlsx"
	FileSummaryCSV     = "summary_statistics.csv"
	FileExportLog      = "export_log.json"
	FileDictionary     = "data_dictionary.json"
	FileQualityReport  = "quality_report.json"
	FileTransformLog   = "transformation_log.json"
	FileProvenance     = "provenance_record.json"
	FileProvenanceText = "provenance.txt"
)

// Inputs collects everything a full export covers.
type Inputs struct {
	Curated    *dataset.Dataset
	Validation *validation.Result
	Quality    *quality.Report
	Transform  *transform.Record
	Lineage    *provenance.Graph
}

// Exporter serializes the curated dataset and its derived metadata into the
// output and metadata directories. Every artifact is written atomically:
// a failure leaves no truncated file, and the error names the artifact
// that failed.
type Exporter struct {
	logger  *slog.Logger
	paths   *config.Paths
	entries []Entry
}

// New creates an Exporter writing under the given paths.
func New(logger *slog.Logger, paths *config.Paths) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger, paths: paths}
}

// ExportAll writes the complete artifact set and finally the export log
// itself. The first artifact failure aborts the remaining writes.
func (e *Exporter) ExportAll(ctx context.Context, in Inputs) (*Manifest, error) {
	steps := []struct {
		name string
		fn   func(Inputs) error
	}{
		{FileCuratedCSV, e.exportCuratedCSV},
		{FileCuratedXLSX, e.exportCuratedExcel},
		{FileSummaryCSV, e.exportSummaryStatistics},
		{FileDictionary, e.exportDataDictionary},
		{FileQualityReport, e.exportQualityReport},
		{FileTransformLog, e.exportTransformationLog},
		{FileProvenance, e.exportProvenanceRecord},
		{FileProvenanceText, e.exportProvenanceText},
	}

	for _, step := range steps {
		if err := step.fn(in); err != nil {
			return nil, errors.NewExportError(
				fmt.Sprintf("failed to export artifact %s", step.name), err).
				WithContext("artifact", step.name)
		}
		e.logger.InfoContext(ctx, "artifact exported",
			slog.String("artifact", step.name))
	}

	manifest := &Manifest{
		GeneratedAt: time.Now(),
		Entries:     append([]Entry(nil), e.entries...),
	}
	if err := e.exportManifest(manifest); err != nil {
		return nil, errors.NewExportError(
			fmt.Sprintf("failed to export artifact %s", FileExportLog), err).
			WithContext("artifact", FileExportLog)
	}

	e.logger.InfoContext(ctx, "export complete",
		slog.Int("artifacts", len(manifest.Entries)+1))

	return manifest, nil
}

// record appends an export log entry after a successful artifact write.
func (e *Exporter) record(artifact, format, path string, rows int, size int64, checksum string) {
	e.entries = append(e.entries, Entry{
		Timestamp: time.Now(),
		Artifact:  artifact,
		Format:    format,
		Path:      path,
		Rows:      rows,
		SizeBytes: size,
		SHA256:    checksum,
	})
}

// writeArtifact runs one atomic write and records it in the export log.
func (e *Exporter) writeArtifact(artifact, format, path string, rows int, write func(io.Writer) error) error {
	size, checksum, err := writeAtomic(path, write)
	if err != nil {
		return err
	}
	e.record(artifact, format, path, rows, size, checksum)
	return nil
}
