// Package units provides distance unit conversion for poster labels and the
// timezone adjustment applied to loaded tracks.
package units

import (
	"fmt"
	"strings"
)

// Meters is a length in metres. Track lengths and filter thresholds use it.
type Meters float64

// Km returns a Meters value for the given number of kilometres.
func Km(v float64) Meters { return Meters(v * 1000) }

// Unit system names accepted on the command line and in config files.
const (
	Metric   = "metric"
	Imperial = "imperial"
)

// ValidSystems contains all valid unit system values.
var ValidSystems = []string{Metric, Imperial}

const metersPerMile = 1609.344

// Converter turns metres into the display unit of one unit system. A single
// value is built at start-up and handed to the poster and its drawers.
type Converter struct {
	system string
}

// NewConverter returns a Converter for system, which must be "metric" or
// "imperial" (case-insensitive).
func NewConverter(system string) (Converter, error) {
	switch s := strings.ToLower(system); s {
	case Metric, Imperial:
		return Converter{system: s}, nil
	default:
		return Converter{}, fmt.Errorf("unknown unit system %q (valid: %s)",
			system, strings.Join(ValidSystems, ", "))
	}
}

// System reports the unit system name. The zero Converter is metric.
func (c Converter) System() string {
	if c.system == "" {
		return Metric
	}
	return c.system
}

// IsMetric reports whether distances are shown in kilometres.
func (c Converter) IsMetric() bool { return c.System() == Metric }

// Display converts m to kilometres or miles.
func (c Converter) Display(m Meters) float64 {
	if c.IsMetric() {
		return float64(m) / 1000
	}
	return float64(m) / metersPerMile
}

// FromDisplay converts a kilometre or mile value back to metres.
func (c Converter) FromDisplay(v float64) Meters {
	if c.IsMetric() {
		return Meters(v * 1000)
	}
	return Meters(v * metersPerMile)
}

// Unit is the distance unit itself: one km or one mile, in metres.
func (c Converter) Unit() Meters { return c.FromDisplay(1) }

// Abbrev returns "km" or "mi".
func (c Converter) Abbrev() string {
	if c.IsMetric() {
		return "km"
	}
	return "mi"
}

// Format renders m with one decimal and the unit abbreviation.
func (c Converter) Format(m Meters) string {
	return fmt.Sprintf("%.1f %s", c.Display(m), c.Abbrev())
}
