// Package scanimage turns raw 2D probe-scan grids into corrected, resampled
// and normalized images, optionally with an edge mask over the features.
package scanimage

import (
	"math"

	"github.com/pkg/errors"

	"secm-flux/internal/dataset"
	"secm-flux/pkg/geometry"
)

// Axis names the scan direction a correction runs along.
type Axis int

const (
	XAxis Axis = iota
	YAxis
)

// String implements fmt.Stringer.
func (a Axis) String() string {
	if a == XAxis {
		return "x"
	}
	return "y"
}

// Options configures one image pass.
type Options struct {
	// SlopeX removes the linear tilt along the x scan lines, fit to the
	// reference row SlopeXRef. SlopeY does the same along y, fit to the
	// reference column SlopeYRef. Both may run in one pass; x runs first.
	SlopeX    bool
	SlopeXRef int
	SlopeY    bool
	SlopeYRef int

	Interpolate bool
	// StepUM is the target grid spacing for resampling; zero means 1 µm.
	StepUM float64

	Normalize bool

	// Edges, when non-nil, runs edge detection on the normalized image.
	Edges EdgeDetector
}

// DefaultOptions returns a pass that leaves the grid untouched.
func DefaultOptions() Options {
	return Options{StepUM: 1}
}

// Result is the outcome of one image pass.
type Result struct {
	Grid       dataset.Grid2D
	Normalized bool
	// EdgeMask is nil unless an EdgeDetector ran; true marks edge pixels.
	EdgeMask [][]bool
}

// Process runs one pass over the raw imported grid. The input is never
// mutated; every step works on a copy so repeated passes with the same
// options produce identical output.
func Process(raw dataset.Grid2D, opts Options) (Result, error) {
	if err := raw.Validate(); err != nil {
		return Result{}, err
	}
	g := raw.Copy()

	if opts.SlopeX {
		if err := slopeCorrect(&g, XAxis, opts.SlopeXRef); err != nil {
			return Result{}, err
		}
	}
	if opts.SlopeY {
		if err := slopeCorrect(&g, YAxis, opts.SlopeYRef); err != nil {
			return Result{}, err
		}
	}
	// Edge kernels assume square pixels, so an edge pass resamples any grid
	// whose sampling is uneven or differs between the axes.
	if opts.Interpolate || (opts.Edges != nil && anisotropic(g)) {
		step := opts.StepUM
		if step <= 0 {
			step = 1
		}
		rg, err := resample(g, step)
		if err != nil {
			return Result{}, err
		}
		g = rg
	}

	res := Result{Grid: g}
	if opts.Normalize {
		normalize(&res.Grid)
		res.Normalized = true
	}
	if opts.Edges != nil {
		if !res.Normalized {
			return Result{}, errors.New("scanimage: edge detection needs a normalized image")
		}
		mask, err := opts.Edges.Detect(res.Grid.Currents)
		if err != nil {
			return Result{}, errors.Wrap(err, "scanimage: edge detection")
		}
		res.EdgeMask = mask
	}
	return res, nil
}

// anisotropic reports whether the grid's sampling is uneven within an axis
// or differs between the two axes.
func anisotropic(g dataset.Grid2D) bool {
	if g.NX() < 2 || g.NY() < 2 {
		return false
	}
	sx, okx := uniformStep(g.X)
	sy, oky := uniformStep(g.Y)
	if !okx || !oky {
		return true
	}
	return math.Abs(sx-sy) > 1e-6*(math.Abs(sx)+math.Abs(sy))
}

// uniformStep returns the common spacing of axis, or false when the spacing
// varies.
func uniformStep(axis []float64) (float64, bool) {
	step := axis[1] - axis[0]
	for i := 2; i < len(axis); i++ {
		if math.Abs(axis[i]-axis[i-1]-step) > 1e-6*math.Abs(step) {
			return 0, false
		}
	}
	return step, true
}

// normalize rescales the grid values to [0, 1] in place. A flat grid maps
// to all zeros.
func normalize(g *dataset.Grid2D) {
	r := geometry.Range{Min: g.Currents[0][0], Max: g.Currents[0][0]}
	for _, row := range g.Currents {
		r = widen(r, geometry.RangeOf(row))
	}
	for _, row := range g.Currents {
		for i, v := range row {
			row[i] = r.Normalize(v)
		}
	}
}

func widen(a, b geometry.Range) geometry.Range {
	if b.Min < a.Min {
		a.Min = b.Min
	}
	if b.Max > a.Max {
		a.Max = b.Max
	}
	return a
}
