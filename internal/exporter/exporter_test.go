package exporter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"curatecli/internal/config"
	"curatecli/internal/dataset"
	"curatecli/internal/provenance"
	"curatecli/internal/quality"
	"curatecli/internal/transform"
	"curatecli/internal/validation"
)

func testInputs(t *testing.T, derived bool) Inputs {
	t.Helper()

	records := []dataset.Record{
		{UDI: 1, ProductID: "L47181", Type: "L", AirTemperature: 298.1, ProcessTemperature: 308.6,
			RotationalSpeed: 1551, Torque: 42.8, ToolWear: 0},
		{UDI: 2, ProductID: "M14860", Type: "M", AirTemperature: 298.2, ProcessTemperature: 308.7,
			RotationalSpeed: 1408, Torque: 46.3, ToolWear: 3},
		{UDI: 3, ProductID: "H29424", Type: "H", AirTemperature: 298.3, ProcessTemperature: 309.1,
			RotationalSpeed: 1498, Torque: 49.4, ToolWear: 125,
			MachineFailure: 1, HDF: 1},
	}
	ds := dataset.New(records, "test.csv")

	assessor, err := quality.NewAssessor(slog.Default(), quality.OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)
	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	tcfg := transform.Config{OutlierPolicy: config.OutlierPolicyRetain, Normalization: config.NormalizationNone}
	if derived {
		tcfg.DerivedFeatures = true
	}
	tr, err := transform.New(slog.Default(), tcfg)
	require.NoError(t, err)
	curated, record, err := tr.Apply(context.Background(), ds, report)
	require.NoError(t, err)

	log := provenance.NewLog("run-test")
	require.NoError(t, log.Record("raw_dataset", "ingest", "pipeline", nil))
	require.NoError(t, log.Record("curated_dataset", "transform", "pipeline", nil))
	graph, err := log.Export()
	require.NoError(t, err)

	return Inputs{
		Curated:    curated,
		Validation: &validation.Result{RowCount: curated.Len()},
		Quality:    report,
		Transform:  record,
		Lineage:    graph,
	}
}

func testExporter(t *testing.T) (*Exporter, *config.Paths) {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	return New(slog.Default(), paths), paths
}

func TestExportAll_WritesEveryArtifact(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	manifest, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Len(t, manifest.Entries, 8)

	for _, name := range []string{FileCuratedCSV, FileCuratedXLSX, FileSummaryCSV, FileExportLog} {
		assert.FileExists(t, paths.GetOutputPath(name))
	}
	for _, name := range []string{FileDictionary, FileQualityReport, FileTransformLog, FileProvenance, FileProvenanceText} {
		assert.FileExists(t, paths.GetMetadataPath(name))
	}
}

func TestExportAll_ChecksumsMatchContent(t *testing.T) {
	e, _ := testExporter(t)
	in := testInputs(t, false)

	manifest, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	for _, entry := range manifest.Entries {
		data, err := os.ReadFile(entry.Path)
		require.NoError(t, err)
		sum := sha256.Sum256(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), entry.SHA256,
			"checksum mismatch for %s", entry.Artifact)
		assert.Equal(t, int64(len(data)), entry.SizeBytes)
	}
}

func TestExportAll_NoTempFilesRemain(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	for _, dir := range []string{paths.OutputDir, paths.MetadataDir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, fi := range entries {
			assert.False(t, strings.HasPrefix(fi.Name(), ".tmp-"),
				"leftover temp file %s", fi.Name())
		}
	}
}

func TestExport_Deterministic(t *testing.T) {
	checksums := make([]map[string]string, 2)
	for i := range checksums {
		in := testInputs(t, true)
		e, _ := testExporter(t)
		manifest, err := e.ExportAll(context.Background(), in)
		require.NoError(t, err)

		checksums[i] = make(map[string]string)
		for _, entry := range manifest.Entries {
			if entry.Format == "csv" || entry.Artifact == "quality_report" || entry.Artifact == "data_dictionary" {
				checksums[i][entry.Artifact+"."+entry.Format] = entry.SHA256
			}
		}
	}

	require.Contains(t, checksums[0], "curated_dataset.csv")
	require.Contains(t, checksums[0], "quality_report.json")
	for artifact, sum := range checksums[0] {
		assert.Equal(t, sum, checksums[1][artifact],
			"%s must be byte-identical across runs", artifact)
	}
}

func TestCuratedCSV_RoundTrip(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetOutputPath(FileCuratedCSV))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "csv must start with a UTF-8 BOM")

	parsed, err := dataset.Parse(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), "roundtrip")
	require.NoError(t, err)
	require.Equal(t, in.Curated.Len(), parsed.Len())
	for i := 0; i < parsed.Len(); i++ {
		assert.Equal(t, in.Curated.Record(i), parsed.Record(i))
	}
}

func TestCuratedCSV_DerivedColumns(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, true)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetOutputPath(FileCuratedCSV))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(data, utf8BOM))), "\n")
	header := strings.Split(lines[0], ",")
	require.Len(t, header, 17)
	assert.Equal(t, dataset.ColToolWearCategory, header[16])
	assert.True(t, strings.HasSuffix(lines[1], ",Low"))
	assert.True(t, strings.HasSuffix(lines[3], ",Medium"))
}

func TestCuratedExcel_Sheets(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.GetOutputPath(FileCuratedXLSX))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{sheetData, sheetQuality}, f.GetSheetList())

	rows, err := f.GetRows(sheetData)
	require.NoError(t, err)
	require.Len(t, rows, in.Curated.Len()+1)
	assert.Equal(t, dataset.Columns(), rows[0])
	assert.Equal(t, "L47181", rows[1][1])

	qrows, err := f.GetRows(sheetQuality)
	require.NoError(t, err)
	assert.Equal(t, "Field", qrows[0][0])
	assert.Equal(t, dataset.ColAirTemperature, qrows[1][0])
}

func TestSummaryStatisticsCSV(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetOutputPath(FileSummaryCSV))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(data, utf8BOM))), "\n")
	require.Len(t, lines, len(dataset.SensorFields())+1)
	assert.Contains(t, lines[1], dataset.ColAirTemperature)
	assert.Contains(t, lines[1], ",3,")
}

func TestQualityReportJSON(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetMetadataPath(FileQualityReport))
	require.NoError(t, err)

	var doc struct {
		Validation *validation.Result `json:"validation"`
		Assessment *quality.Report    `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, in.Curated.Len(), doc.Validation.RowCount)
	assert.Equal(t, 1, doc.Assessment.FailureCount)
	assert.Len(t, doc.Assessment.Summaries, 5)
}

func TestDataDictionaryJSON(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetMetadataPath(FileDictionary))
	require.NoError(t, err)

	var doc struct {
		ExpectedRows int                       `json:"expected_rows"`
		Fields       []dataset.DictionaryEntry `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, dataset.ExpectedRows, doc.ExpectedRows)
	assert.Len(t, doc.Fields, 14)
}

func TestProvenanceArtifacts(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetMetadataPath(FileProvenance))
	require.NoError(t, err)
	var graph provenance.Graph
	require.NoError(t, json.Unmarshal(data, &graph))
	assert.Equal(t, "run-test", graph.RunID)
	assert.Len(t, graph.Events, 2)

	text, err := os.ReadFile(paths.GetMetadataPath(FileProvenanceText))
	require.NoError(t, err)
	assert.Contains(t, string(text), "PROVENANCE SUMMARY")
	assert.Contains(t, string(text), "run-test")
}

func TestExportLog_CoversAllArtifacts(t *testing.T) {
	e, paths := testExporter(t)
	in := testInputs(t, false)

	before := time.Now()
	_, err := e.ExportAll(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetOutputPath(FileExportLog))
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Len(t, m.Entries, 8)
	assert.False(t, m.GeneratedAt.Before(before))

	artifacts := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		artifacts = append(artifacts, entry.Artifact)
		assert.NotEmpty(t, entry.SHA256)
		assert.Positive(t, entry.SizeBytes)
	}
	assert.Contains(t, artifacts, "curated_dataset")
	assert.Contains(t, artifacts, "provenance_record")
}

func TestExportAll_ErrorNamesArtifact(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	// Output dir path occupied by a file so csv export cannot create it.
	require.NoError(t, os.MkdirAll(paths.BaseDir, 0755))
	require.NoError(t, os.WriteFile(paths.OutputDir, []byte("blocker"), 0644))

	e := New(slog.Default(), paths)
	_, err := e.ExportAll(context.Background(), testInputs(t, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileCuratedCSV)
}

func TestWriteAtomic_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.json")

	_, _, err := writeAtomic(path, func(w io.Writer) error {
		return os.ErrClosed
	})
	require.Error(t, err)

	assert.NoFileExists(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
