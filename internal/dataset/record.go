package dataset

// Column names as they appear in the raw AI4I 2020 CSV header.
const (
	ColUDI             = "UDI"
	ColProductID       = "Product ID"
	ColType            = "Type"
	ColAirTemperature  = "Air temperature [K]"
	ColProcessTemp     = "Process temperature [K]"
	ColRotationalSpeed = "Rotational speed [rpm]"
	ColTorque          = "Torque [Nm]"
	ColToolWear        = "Tool wear [min]"
	ColMachineFailure  = "Machine failure"
	ColTWF             = "TWF"
	ColHDF             = "HDF"
	ColPWF             = "PWF"
	ColOSF             = "OSF"
	ColRNF             = "RNF"
)

// Derived feature columns appended by the transformer. Not part of the raw
// file's expected schema.
const (
	ColTempDifference   = "Temperature difference [K]"
	ColPowerEstimate    = "Power estimate [W]"
	ColToolWearCategory = "Tool wear category"
)

// QualityVariants are the allowed values of the Type column.
var QualityVariants = []string{"L", "M", "H"}

// Record is one machine observation: identifier, product quality variant,
// five sensor readings, and the failure flags. Sensor readings are float64
// even where the raw file stores integers so normalization can be applied
// uniformly.
type Record struct {
	UDI                int64   `json:"udi"`
	ProductID          string  `json:"product_id"`
	Type               string  `json:"type"`
	AirTemperature     float64 `json:"air_temperature_k"`
	ProcessTemperature float64 `json:"process_temperature_k"`
	RotationalSpeed    float64 `json:"rotational_speed_rpm"`
	Torque             float64 `json:"torque_nm"`
	ToolWear           float64 `json:"tool_wear_min"`
	MachineFailure     int     `json:"machine_failure"`
	TWF                int     `json:"twf"`
	HDF                int     `json:"hdf"`
	PWF                int     `json:"pwf"`
	OSF                int     `json:"osf"`
	RNF                int     `json:"rnf"`

	// Derived features, populated by the transformer when enabled.
	TempDifference   float64 `json:"temperature_difference_k,omitempty"`
	PowerEstimate    float64 `json:"power_estimate_w,omitempty"`
	ToolWearCategory string  `json:"tool_wear_category,omitempty"`
}

// DerivedColumns returns the derived feature columns in export order.
func DerivedColumns() []string {
	return []string{ColTempDifference, ColPowerEstimate, ColToolWearCategory}
}

// Columns returns the canonical 14-column order of the raw file.
func Columns() []string {
	return []string{
		ColUDI, ColProductID, ColType,
		ColAirTemperature, ColProcessTemp, ColRotationalSpeed,
		ColTorque, ColToolWear,
		ColMachineFailure, ColTWF, ColHDF, ColPWF, ColOSF, ColRNF,
	}
}

// SensorFields returns the five continuous sensor columns in canonical order.
func SensorFields() []string {
	return []string{
		ColAirTemperature, ColProcessTemp, ColRotationalSpeed,
		ColTorque, ColToolWear,
	}
}

// FailureModeFields returns the five failure-mode flag columns.
func FailureModeFields() []string {
	return []string{ColTWF, ColHDF, ColPWF, ColOSF, ColRNF}
}

// SensorValue returns the value of the named sensor field.
func (r Record) SensorValue(field string) (float64, bool) {
	switch field {
	case ColAirTemperature:
		return r.AirTemperature, true
	case ColProcessTemp:
		return r.ProcessTemperature, true
	case ColRotationalSpeed:
		return r.RotationalSpeed, true
	case ColTorque:
		return r.Torque, true
	case ColToolWear:
		return r.ToolWear, true
	}
	return 0, false
}

// SetSensorValue sets the named sensor field. Used by the transformer on
// record copies; the original dataset is never mutated.
func (r *Record) SetSensorValue(field string, value float64) bool {
	switch field {
	case ColAirTemperature:
		r.AirTemperature = value
	case ColProcessTemp:
		r.ProcessTemperature = value
	case ColRotationalSpeed:
		r.RotationalSpeed = value
	case ColTorque:
		r.Torque = value
	case ColToolWear:
		r.ToolWear = value
	default:
		return false
	}
	return true
}

// FailureModeOR returns the logical OR of the five mode flags.
func (r *Record) FailureModeOR() int {
	if r.TWF != 0 || r.HDF != 0 || r.PWF != 0 || r.OSF != 0 || r.RNF != 0 {
		return 1
	}
	return 0
}

// AggregateFlagConsistent reports whether the aggregate failure flag equals
// the OR of the mode flags.
func (r *Record) AggregateFlagConsistent() bool {
	return r.MachineFailure == r.FailureModeOR()
}
