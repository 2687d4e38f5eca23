package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"curatecli/internal/dataset"
)

const (
	sheetData    = "Curated Data"
	sheetQuality = "Quality Summary"
)

// exportCuratedExcel writes the curated dataset as an xlsx workbook with a
// data sheet and a quality summary sheet.
func (e *Exporter) exportCuratedExcel(in Inputs) error {
	path := e.paths.GetOutputPath(FileCuratedXLSX)

	return e.writeArtifact("curated_dataset", "xlsx", path, in.Curated.Len(),
		func(w io.Writer) error {
			f := excelize.NewFile()
			defer f.Close()

			if err := buildDataSheet(f, in); err != nil {
				return err
			}
			if err := buildQualitySheet(f, in); err != nil {
				return err
			}
			_, err := f.WriteTo(w)
			return err
		})
}

func buildDataSheet(f *excelize.File, in Inputs) error {
	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return err
	}

	withDerived := in.Transform != nil && len(in.Transform.DerivedFeatures) > 0
	header := dataset.Columns()
	if withDerived {
		header = append(header, dataset.DerivedColumns()...)
	}
	if err := setStringRow(f, sheetData, 1, header); err != nil {
		return err
	}

	for i, rec := range in.Curated.Records() {
		row := make([]interface{}, 0, len(header))
		row = append(row,
			rec.UDI, rec.ProductID, rec.Type,
			rec.AirTemperature, rec.ProcessTemperature, rec.RotationalSpeed,
			rec.Torque, rec.ToolWear,
			rec.MachineFailure, rec.TWF, rec.HDF, rec.PWF, rec.OSF, rec.RNF,
		)
		if withDerived {
			row = append(row, rec.TempDifference, rec.PowerEstimate, rec.ToolWearCategory)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetData, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func buildQualitySheet(f *excelize.File, in Inputs) error {
	if _, err := f.NewSheet(sheetQuality); err != nil {
		return err
	}

	header := []string{"Field", "Count", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max", "Outliers"}
	if err := setStringRow(f, sheetQuality, 1, header); err != nil {
		return err
	}

	outliers := make(map[string]int, len(in.Quality.Outliers))
	for _, fo := range in.Quality.Outliers {
		outliers[fo.Field] = fo.Count
	}

	for i, s := range in.Quality.Summaries {
		row := []interface{}{
			s.Field, s.Count, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max,
			outliers[s.Field],
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetQuality, cell, &row); err != nil {
			return err
		}
	}

	footer := fmt.Sprintf("Rows: %d  Duplicates: %d  Failures: %d (%.2f%%)",
		in.Curated.Len(), in.Quality.DuplicateRows, in.Quality.FailureCount, in.Quality.FailureRate)
	cell, err := excelize.CoordinatesToCellName(1, len(in.Quality.Summaries)+3)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheetQuality, cell, footer)
}

func setStringRow(f *excelize.File, sheet string, rowIdx int, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}
