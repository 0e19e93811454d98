// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Metres = "m"
	Feet   = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Metres, Feet}

const metresPerFoot = 0.3048

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated string of valid units for error messages
func ValidUnitsString() string {
	return "m, ft"
}

// ToMetres converts a distance in the given units to metres.
// Grid building and storage always work in metres.
func ToMetres(v float64, unit string) float64 {
	switch unit {
	case Feet:
		return v * metresPerFoot
	case Metres:
		return v
	default:
		return v // default to metres if unknown unit
	}
}

// FromMetres converts a distance in metres to the target units for display.
func FromMetres(v float64, unit string) float64 {
	switch unit {
	case Feet:
		return v / metresPerFoot
	case Metres:
		return v
	default:
		return v
	}
}
