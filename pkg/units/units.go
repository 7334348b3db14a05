// Package units rescales measurement arrays between the unit selections a
// dataset can be expressed in. Distances are carried internally in µm,
// currents in nA, times in s and potentials in V; conversions are fixed
// multiplicative factors applied to fresh copies of the input.
package units

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// DistanceUnit selects a length unit.
type DistanceUnit int

const (
	Micrometer DistanceUnit = iota // internal baseline
	Millimeter
	Nanometer
)

// String returns the display symbol for the unit.
func (u DistanceUnit) String() string {
	switch u {
	case Millimeter:
		return "mm"
	case Nanometer:
		return "nm"
	default:
		return "µm"
	}
}

// factor returns the number of baseline units (µm) per unit u.
func (u DistanceUnit) factor() float64 {
	switch u {
	case Millimeter:
		return 1e3
	case Nanometer:
		return 1e-3
	default:
		return 1
	}
}

// CurrentUnit selects a current unit.
type CurrentUnit int

const (
	Nanoamp CurrentUnit = iota // internal baseline
	Microamp
	Picoamp
)

func (u CurrentUnit) String() string {
	switch u {
	case Microamp:
		return "µA"
	case Picoamp:
		return "pA"
	default:
		return "nA"
	}
}

func (u CurrentUnit) factor() float64 {
	switch u {
	case Microamp:
		return 1e3
	case Picoamp:
		return 1e-3
	default:
		return 1
	}
}

// TimeUnit selects a time unit.
type TimeUnit int

const (
	Second TimeUnit = iota // internal baseline
	Minute
	Millisecond
)

func (u TimeUnit) String() string {
	switch u {
	case Minute:
		return "min"
	case Millisecond:
		return "ms"
	default:
		return "s"
	}
}

func (u TimeUnit) factor() float64 {
	switch u {
	case Minute:
		return 60
	case Millisecond:
		return 1e-3
	default:
		return 1
	}
}

// PotentialUnit selects a potential unit.
type PotentialUnit int

const (
	Volt PotentialUnit = iota // internal baseline
	Millivolt
)

func (u PotentialUnit) String() string {
	if u == Millivolt {
		return "mV"
	}
	return "V"
}

func (u PotentialUnit) factor() float64 {
	if u == Millivolt {
		return 1e-3
	}
	return 1
}

// scaled returns a copy of vals multiplied by f.
func scaled(vals []float64, f float64) []float64 {
	return floats.ScaleTo(make([]float64, len(vals)), f, vals)
}

// ConvertDistance rescales vals expressed in from into to.
func ConvertDistance(vals []float64, from, to DistanceUnit) []float64 {
	return scaled(vals, from.factor()/to.factor())
}

// ConvertCurrent rescales vals expressed in from into to.
func ConvertCurrent(vals []float64, from, to CurrentUnit) []float64 {
	return scaled(vals, from.factor()/to.factor())
}

// ConvertTime rescales vals expressed in from into to.
func ConvertTime(vals []float64, from, to TimeUnit) []float64 {
	return scaled(vals, from.factor()/to.factor())
}

// ConvertPotential rescales vals expressed in from into to.
func ConvertPotential(vals []float64, from, to PotentialUnit) []float64 {
	return scaled(vals, from.factor()/to.factor())
}

// ScaleDistance converts a single distance value between units.
func ScaleDistance(v float64, from, to DistanceUnit) float64 {
	return v * from.factor() / to.factor()
}

// ScaleCurrent converts a single current value between units.
func ScaleCurrent(v float64, from, to CurrentUnit) float64 {
	return v * from.factor() / to.factor()
}

// ScaleTime converts a single time value between units.
func ScaleTime(v float64, from, to TimeUnit) float64 {
	return v * from.factor() / to.factor()
}

// ParseDistance maps a unit symbol to its DistanceUnit.
func ParseDistance(s string) (DistanceUnit, error) {
	switch s {
	case "um", "µm":
		return Micrometer, nil
	case "mm":
		return Millimeter, nil
	case "nm":
		return Nanometer, nil
	}
	return Micrometer, errors.Errorf("unknown distance unit %q", s)
}

// ParseCurrent maps a unit symbol to its CurrentUnit.
func ParseCurrent(s string) (CurrentUnit, error) {
	switch s {
	case "nA":
		return Nanoamp, nil
	case "uA", "µA":
		return Microamp, nil
	case "pA":
		return Picoamp, nil
	}
	return Nanoamp, errors.Errorf("unknown current unit %q", s)
}

// ParseTime maps a unit symbol to its TimeUnit.
func ParseTime(s string) (TimeUnit, error) {
	switch s {
	case "s":
		return Second, nil
	case "min":
		return Minute, nil
	case "ms":
		return Millisecond, nil
	}
	return Second, errors.Errorf("unknown time unit %q", s)
}

// ParsePotential maps a unit symbol to its PotentialUnit.
func ParsePotential(s string) (PotentialUnit, error) {
	switch s {
	case "V":
		return Volt, nil
	case "mV":
		return Millivolt, nil
	}
	return Volt, errors.Errorf("unknown potential unit %q", s)
}

// ToIUPAC flips the sign of currents recorded under the polarographic
// convention (CH Instruments) so that anodic currents are positive. Returns a
// fresh copy.
func ToIUPAC(currents []float64) []float64 {
	return scaled(currents, -1)
}
