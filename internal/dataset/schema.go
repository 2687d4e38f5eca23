package dataset

import "fmt"

// ExpectedRows is the fixed size of the AI4I 2020 table.
const ExpectedRows = 10000

// FieldKind is the semantic type of a schema field.
type FieldKind string

const (
	KindIdentifier  FieldKind = "identifier"
	KindText        FieldKind = "text"
	KindCategorical FieldKind = "categorical"
	KindContinuous  FieldKind = "continuous"
	KindBinary      FieldKind = "binary"
)

// FieldSpec describes one column of the expected schema: semantic type,
// unit, valid range for numeric fields, and allowed values for categorical
// fields.
type FieldSpec struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"kind"`
	Unit        string    `json:"unit,omitempty"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	HasRange    bool      `json:"has_range"`
	Allowed     []string  `json:"allowed,omitempty"`
	Description string    `json:"description"`
}

// RangeString renders the valid range for documentation output.
func (f FieldSpec) RangeString() string {
	switch {
	case f.HasRange:
		return fmt.Sprintf("[%g, %g]", f.Min, f.Max)
	case len(f.Allowed) > 0:
		return fmt.Sprintf("%v", f.Allowed)
	case f.Kind == KindBinary:
		return "{0, 1}"
	default:
		return ""
	}
}

// ExpectedSchema returns the column contract for the raw dataset, in
// canonical column order.
func ExpectedSchema() []FieldSpec {
	return []FieldSpec{
		{Name: ColUDI, Kind: KindIdentifier, Description: "Unique data identifier, 1..10000"},
		{Name: ColProductID, Kind: KindText, Description: "Product serial: quality variant letter plus serial number"},
		{Name: ColType, Kind: KindCategorical, Allowed: QualityVariants, Description: "Product quality variant: low, medium, or high"},
		{Name: ColAirTemperature, Kind: KindContinuous, Unit: "K", Min: 290, Max: 320, HasRange: true, Description: "Ambient air temperature"},
		{Name: ColProcessTemp, Kind: KindContinuous, Unit: "K", Min: 300, Max: 330, HasRange: true, Description: "Process temperature at the tool"},
		{Name: ColRotationalSpeed, Kind: KindContinuous, Unit: "rpm", Min: 1000, Max: 3000, HasRange: true, Description: "Spindle rotational speed"},
		{Name: ColTorque, Kind: KindContinuous, Unit: "Nm", Min: 0, Max: 100, HasRange: true, Description: "Torque at the spindle"},
		{Name: ColToolWear, Kind: KindContinuous, Unit: "min", Min: 0, Max: 300, HasRange: true, Description: "Accumulated tool wear time"},
		{Name: ColMachineFailure, Kind: KindBinary, Description: "Aggregate failure flag; set when any mode flag is set"},
		{Name: ColTWF, Kind: KindBinary, Description: "Tool wear failure"},
		{Name: ColHDF, Kind: KindBinary, Description: "Heat dissipation failure"},
		{Name: ColPWF, Kind: KindBinary, Description: "Power failure"},
		{Name: ColOSF, Kind: KindBinary, Description: "Overstrain failure"},
		{Name: ColRNF, Kind: KindBinary, Description: "Random failure"},
	}
}

// SchemaField looks up the field definition for a column name.
func SchemaField(name string) (FieldSpec, bool) {
	for _, spec := range ExpectedSchema() {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// DictionaryEntry is one row of the exported data dictionary.
type DictionaryEntry struct {
	Field        string `json:"field"`
	SemanticType string `json:"semantic_type"`
	Unit         string `json:"unit,omitempty"`
	ValidRange   string `json:"valid_range,omitempty"`
	Description  string `json:"description"`
}

// DataDictionary derives the dictionary document from the expected schema.
func DataDictionary() []DictionaryEntry {
	schema := ExpectedSchema()
	entries := make([]DictionaryEntry, 0, len(schema))
	for _, spec := range schema {
		entries = append(entries, DictionaryEntry{
			Field:        spec.Name,
			SemanticType: string(spec.Kind),
			Unit:         spec.Unit,
			ValidRange:   spec.RangeString(),
			Description:  spec.Description,
		})
	}
	return entries
}
