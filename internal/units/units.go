// Package units provides shared constants and validation for energy units
package units

// Unit constants
const (
	KWH = "kwh"
	WH  = "wh"
	MJ  = "mj"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{KWH, WH, MJ}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "kwh, wh, mj"
}

// ConvertEnergy converts an energy reading from kilowatt-hours to the target
// units. Datasets and the run store hold energy in kWh.
func ConvertEnergy(kwh float64, targetUnits string) float64 {
	switch targetUnits {
	case KWH:
		return kwh
	case WH:
		return kwh * 1000
	case MJ:
		return kwh * 3.6
	default:
		return kwh
	}
}
