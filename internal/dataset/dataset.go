// Package dataset defines the canonical array containers the processing
// pipelines consume. Vendor-specific import adapters are expected to deposit
// data in these shapes: distances in µm, times in s, potentials in V and
// currents in nA, with the IUPAC sign convention.
//
// The raw imported arrays are treated as immutable within a reshape pass;
// every pipeline works on fresh copies so that re-invocation is idempotent.
package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Trace is an ordered sequence of (x, y) samples. Approach curves use
// (distance, current); chronoamperometry uses (time, current).
type Trace struct {
	X []float64
	Y []float64
}

// Len returns the number of samples.
func (t Trace) Len() int {
	return len(t.X)
}

// Validate checks the parallel-array invariant.
func (t Trace) Validate() error {
	if len(t.X) != len(t.Y) {
		return fmt.Errorf("trace: x has %d points, y has %d", len(t.X), len(t.Y))
	}
	if len(t.X) == 0 {
		return fmt.Errorf("trace: empty")
	}
	return nil
}

// Copy returns a deep copy of the trace.
func (t Trace) Copy() Trace {
	out := Trace{X: make([]float64, len(t.X)), Y: make([]float64, len(t.Y))}
	copy(out.X, t.X)
	copy(out.Y, t.Y)
	return out
}

// StripLeadingNaN drops leading samples whose y value is NaN. Vendor files
// pad the approach region with NaN rows before the tip registers a current.
func (t Trace) StripLeadingNaN() Trace {
	start := 0
	for start < len(t.Y) && math.IsNaN(t.Y[start]) {
		start++
	}
	return Trace{X: append([]float64(nil), t.X[start:]...), Y: append([]float64(nil), t.Y[start:]...)}
}

// CycleMatrix holds a multi-cycle sweep: one shared potential axis and one
// row of currents per cycle.
type CycleMatrix struct {
	Potential []float64   // length = points per cycle, volts
	Currents  [][]float64 // ncycles × points per cycle, nA
}

// Cycles returns the number of sweep cycles.
func (m CycleMatrix) Cycles() int {
	return len(m.Currents)
}

// PointsPerCycle returns the shared axis length.
func (m CycleMatrix) PointsPerCycle() int {
	return len(m.Potential)
}

// Validate checks that every cycle row matches the shared potential axis.
func (m CycleMatrix) Validate() error {
	if len(m.Potential) == 0 {
		return fmt.Errorf("cycle matrix: empty potential axis")
	}
	if len(m.Currents) == 0 {
		return fmt.Errorf("cycle matrix: no cycles")
	}
	for i, row := range m.Currents {
		if len(row) != len(m.Potential) {
			return fmt.Errorf("cycle matrix: cycle %d has %d points, axis has %d",
				i+1, len(row), len(m.Potential))
		}
	}
	return nil
}

// Copy returns a deep copy of the matrix.
func (m CycleMatrix) Copy() CycleMatrix {
	out := CycleMatrix{
		Potential: append([]float64(nil), m.Potential...),
		Currents:  make([][]float64, len(m.Currents)),
	}
	for i, row := range m.Currents {
		out.Currents[i] = append([]float64(nil), row...)
	}
	return out
}

// Grid2D holds a 2D scan image: unique sorted x/y coordinates and an
// ny × nx matrix of currents.
type Grid2D struct {
	X        []float64   // nx unique positions, µm, ascending
	Y        []float64   // ny unique positions, µm, ascending
	Currents [][]float64 // ny × nx, nA
}

// NX returns the number of columns.
func (g Grid2D) NX() int {
	return len(g.X)
}

// NY returns the number of rows.
func (g Grid2D) NY() int {
	return len(g.Y)
}

// Validate checks the grid shape and axis ordering.
func (g Grid2D) Validate() error {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return fmt.Errorf("grid: empty axis")
	}
	if len(g.Currents) != len(g.Y) {
		return fmt.Errorf("grid: %d current rows for %d y positions", len(g.Currents), len(g.Y))
	}
	for i, row := range g.Currents {
		if len(row) != len(g.X) {
			return fmt.Errorf("grid: row %d has %d points for %d x positions", i, len(row), len(g.X))
		}
	}
	for i := 1; i < len(g.X); i++ {
		if g.X[i] <= g.X[i-1] {
			return fmt.Errorf("grid: x axis not strictly ascending at %d", i)
		}
	}
	for i := 1; i < len(g.Y); i++ {
		if g.Y[i] <= g.Y[i-1] {
			return fmt.Errorf("grid: y axis not strictly ascending at %d", i)
		}
	}
	return nil
}

// Copy returns a deep copy of the grid.
func (g Grid2D) Copy() Grid2D {
	out := Grid2D{
		X:        append([]float64(nil), g.X...),
		Y:        append([]float64(nil), g.Y...),
		Currents: make([][]float64, len(g.Currents)),
	}
	for i, row := range g.Currents {
		out.Currents[i] = append([]float64(nil), row...)
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive. Import
// adapters that only deliver an x axis synthesize the y axis this way.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
