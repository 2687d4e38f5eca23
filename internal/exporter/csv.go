package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"curatecli/internal/dataset"
)

// utf8BOM is prepended to CSV artifacts so spreadsheet tools detect the
// encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// exportCuratedCSV writes the curated dataset as CSV. Derived feature
// columns are appended only when the transformation actually produced them.
func (e *Exporter) exportCuratedCSV(in Inputs) error {
	path := e.paths.GetOutputPath(FileCuratedCSV)
	withDerived := in.Transform != nil && len(in.Transform.DerivedFeatures) > 0

	return e.writeArtifact("curated_dataset", "csv", path, in.Curated.Len(),
		func(w io.Writer) error {
			if _, err := w.Write(utf8BOM); err != nil {
				return err
			}
			cw := csv.NewWriter(w)

			header := dataset.Columns()
			if withDerived {
				header = append(header, dataset.DerivedColumns()...)
			}
			if err := cw.Write(header); err != nil {
				return err
			}

			for _, rec := range in.Curated.Records() {
				if err := cw.Write(recordRow(rec, withDerived)); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
}

// recordRow renders one record in column order. Floats use the shortest
// representation that round-trips, so re-ingesting the CSV reproduces the
// exact values.
func recordRow(rec dataset.Record, withDerived bool) []string {
	row := []string{
		strconv.FormatInt(rec.UDI, 10),
		rec.ProductID,
		rec.Type,
		formatFloat(rec.AirTemperature),
		formatFloat(rec.ProcessTemperature),
		formatFloat(rec.RotationalSpeed),
		formatFloat(rec.Torque),
		formatFloat(rec.ToolWear),
		strconv.Itoa(rec.MachineFailure),
		strconv.Itoa(rec.TWF),
		strconv.Itoa(rec.HDF),
		strconv.Itoa(rec.PWF),
		strconv.Itoa(rec.OSF),
		strconv.Itoa(rec.RNF),
	}
	if withDerived {
		row = append(row,
			formatFloat(rec.TempDifference),
			formatFloat(rec.PowerEstimate),
			rec.ToolWearCategory,
		)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// exportSummaryStatistics writes one row of descriptive statistics per
// continuous sensor field.
func (e *Exporter) exportSummaryStatistics(in Inputs) error {
	path := e.paths.GetOutputPath(FileSummaryCSV)

	return e.writeArtifact("summary_statistics", "csv", path, len(in.Quality.Summaries),
		func(w io.Writer) error {
			if _, err := w.Write(utf8BOM); err != nil {
				return err
			}
			cw := csv.NewWriter(w)

			header := []string{"Field", "Count", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max"}
			if err := cw.Write(header); err != nil {
				return err
			}
			for _, s := range in.Quality.Summaries {
				row := []string{
					s.Field,
					strconv.Itoa(s.Count),
					statFloat(s.Mean),
					statFloat(s.Std),
					statFloat(s.Min),
					statFloat(s.Q1),
					statFloat(s.Median),
					statFloat(s.Q3),
					statFloat(s.Max),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		})
}

// statFloat rounds summary values to a readable precision.
func statFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
