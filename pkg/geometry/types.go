// Package geometry provides basic interval types used by the scan pipelines.
package geometry

// Range is a closed interval on one axis.
type Range struct {
	Min float64
	Max float64
}

// Span returns the width of the interval.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Normalize maps v into [0,1] over the range. Degenerate ranges map to 0.
func (r Range) Normalize(v float64) float64 {
	if r.Span() == 0 {
		return 0
	}
	return (v - r.Min) / r.Span()
}

// RangeOf returns the min/max of vals. Empty input yields the zero Range.
func RangeOf(vals []float64) Range {
	if len(vals) == 0 {
		return Range{}
	}
	r := Range{Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return r
}
