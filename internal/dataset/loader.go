package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"curatecli/internal/errors"
)

// Load reads the raw dataset CSV from path. The header must match the
// expected 14-column layout exactly. Empty cells are recorded as missing
// and left at their zero value; type errors fail ingestion with the
// offending row and column named.
func Load(path string, logger *slog.Logger) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIngestionError(fmt.Sprintf("failed to open dataset file %s", path), err)
	}
	defer file.Close()

	ds, err := Parse(file, path)
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		slog.String("source", path),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(Columns())),
		slog.Int("missing_cells", len(ds.MissingCells())))

	return ds, nil
}

// Parse reads a dataset from r. The source string is carried into the
// dataset for provenance.
func Parse(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns())

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewIngestionError("failed to read CSV header", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []Record
	var missing []MissingCell
	rowIndex := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewIngestionError(fmt.Sprintf("malformed CSV row %d", rowIndex+1), err)
		}
		rowIndex++

		rec, rowMissing, err := parseRow(row, rowIndex)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		missing = append(missing, rowMissing...)
	}

	ds := New(records, source)
	ds.missing = missing
	return ds, nil
}

// checkHeader verifies the raw file carries exactly the expected columns in
// canonical order.
func checkHeader(header []string) error {
	expected := Columns()
	if len(header) != len(expected) {
		return errors.NewIngestionError(
			fmt.Sprintf("expected %d columns, found %d", len(expected), len(header)), nil).
			WithContext("header", header)
	}
	for i, name := range expected {
		if strings.TrimSpace(header[i]) != name {
			return errors.NewIngestionError(
				fmt.Sprintf("unexpected column %d: want %q, got %q", i+1, name, header[i]), nil)
		}
	}
	return nil
}

func parseRow(row []string, rowIndex int) (Record, []MissingCell, error) {
	var rec Record
	var missing []MissingCell

	cols := Columns()
	cell := func(i int) (string, bool) {
		v := strings.TrimSpace(row[i])
		if v == "" {
			missing = append(missing, MissingCell{RowIndex: rowIndex, Field: cols[i]})
			return "", false
		}
		return v, true
	}

	parseFloat := func(i int, dst *float64) error {
		v, ok := cell(i)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewIngestionError(
				fmt.Sprintf("row %d: invalid numeric value %q in column %q", rowIndex, v, cols[i]), err)
		}
		*dst = f
		return nil
	}

	parseFlag := func(i int, dst *int) error {
		v, ok := cell(i)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewIngestionError(
				fmt.Sprintf("row %d: invalid flag value %q in column %q", rowIndex, v, cols[i]), err)
		}
		*dst = n
		return nil
	}

	if v, ok := cell(0); ok {
		udi, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rec, nil, errors.NewIngestionError(
				fmt.Sprintf("row %d: invalid identifier %q", rowIndex, v), err)
		}
		rec.UDI = udi
	}
	if v, ok := cell(1); ok {
		rec.ProductID = v
	}
	if v, ok := cell(2); ok {
		rec.Type = v
	}

	floatTargets := []*float64{
		&rec.AirTemperature, &rec.ProcessTemperature, &rec.RotationalSpeed,
		&rec.Torque, &rec.ToolWear,
	}
	for i, dst := range floatTargets {
		if err := parseFloat(3+i, dst); err != nil {
			return rec, nil, err
		}
	}

	flagTargets := []*int{&rec.MachineFailure, &rec.TWF, &rec.HDF, &rec.PWF, &rec.OSF, &rec.RNF}
	for i, dst := range flagTargets {
		if err := parseFlag(8+i, dst); err != nil {
			return rec, nil, err
		}
	}

	return rec, missing, nil
}
