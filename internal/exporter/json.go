package exporter

import (
	"encoding/json"
	"io"

	"curatecli/internal/dataset"
	"curatecli/internal/quality"
	"curatecli/internal/validation"
)

// qualityDocument is the on-disk shape of the quality report, pairing the
// schema validation result with the statistical assessment. It carries no
// generation timestamp: identical input and configuration must produce
// byte-identical report documents.
type qualityDocument struct {
	Validation *validation.Result `json:"validation"`
	Assessment *quality.Report    `json:"assessment"`
}

// dictionaryDocument wraps the data dictionary with dataset identity.
type dictionaryDocument struct {
	Dataset      string                    `json:"dataset"`
	ExpectedRows int                       `json:"expected_rows"`
	Fields       []dataset.DictionaryEntry `json:"fields"`
}

func writeJSON(w io.Writer, doc interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (e *Exporter) exportDataDictionary(in Inputs) error {
	path := e.paths.GetMetadataPath(FileDictionary)
	doc := dictionaryDocument{
		Dataset:      "AI4I 2020 Predictive Maintenance Dataset",
		ExpectedRows: dataset.ExpectedRows,
		Fields:       dataset.DataDictionary(),
	}
	return e.writeArtifact("data_dictionary", "json", path, len(doc.Fields),
		func(w io.Writer) error { return writeJSON(w, doc) })
}

func (e *Exporter) exportQualityReport(in Inputs) error {
	path := e.paths.GetMetadataPath(FileQualityReport)
	doc := qualityDocument{
		Validation: in.Validation,
		Assessment: in.Quality,
	}
	return e.writeArtifact("quality_report", "json", path, in.Quality.RowCount,
		func(w io.Writer) error { return writeJSON(w, doc) })
}

func (e *Exporter) exportTransformationLog(in Inputs) error {
	path := e.paths.GetMetadataPath(FileTransformLog)
	return e.writeArtifact("transformation_log", "json", path, len(in.Transform.Steps),
		func(w io.Writer) error { return writeJSON(w, in.Transform) })
}

func (e *Exporter) exportProvenanceRecord(in Inputs) error {
	path := e.paths.GetMetadataPath(FileProvenance)
	return e.writeArtifact("provenance_record", "json", path, len(in.Lineage.Events),
		func(w io.Writer) error { return writeJSON(w, in.Lineage) })
}

func (e *Exporter) exportProvenanceText(in Inputs) error {
	path := e.paths.GetMetadataPath(FileProvenanceText)
	return e.writeArtifact("provenance_summary", "txt", path, len(in.Lineage.Events),
		func(w io.Writer) error {
			_, err := io.WriteString(w, in.Lineage.Summary())
			return err
		})
}

// exportManifest writes the export log last so it can cover every other
// artifact. The manifest itself is therefore the one file without a
// recorded checksum.
func (e *Exporter) exportManifest(m *Manifest) error {
	path := e.paths.GetOutputPath(FileExportLog)
	_, _, err := writeAtomic(path, func(w io.Writer) error {
		return writeJSON(w, m)
	})
	return err
}
