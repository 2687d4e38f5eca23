package dataset

import (
	"time"
)

// MissingCell identifies one empty cell found at ingestion. RowIndex is the
// 1-based data row number (header excluded).
type MissingCell struct {
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
}

// Dataset is an ordered, immutable collection of records. Transformations
// derive a new Dataset rather than mutating in place, which keeps the raw
// ingested table available for auditing.
type Dataset struct {
	records  []Record
	source   string
	loadedAt time.Time
	missing  []MissingCell
}

// New creates a dataset over the given records.
func New(records []Record, source string) *Dataset {
	return &Dataset{
		records:  records,
		source:   source,
		loadedAt: time.Now(),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the underlying records. Callers must treat the slice as
// read-only; use Clone for a mutable copy.
func (d *Dataset) Records() []Record {
	return d.records
}

// Record returns the record at index i.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Source returns the path the dataset was ingested from.
func (d *Dataset) Source() string {
	return d.source
}

// LoadedAt returns the ingestion timestamp.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// MissingCells returns the empty cells recorded at ingestion.
func (d *Dataset) MissingCells() []MissingCell {
	return d.missing
}

// Clone returns a deep copy of the records for derivation of a new dataset.
func (d *Dataset) Clone() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Derive creates a new dataset from transformed records, preserving the
// source reference and ingestion metadata of the parent.
func (d *Dataset) Derive(records []Record) *Dataset {
	return &Dataset{
		records:  records,
		source:   d.source,
		loadedAt: d.loadedAt,
		missing:  d.missing,
	}
}

// SensorColumn extracts one sensor field as a column vector.
func (d *Dataset) SensorColumn(field string) []float64 {
	out := make([]float64, 0, len(d.records))
	for i := range d.records {
		v, ok := d.records[i].SensorValue(field)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}
