package scanimage

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"

	"secm-flux/internal/dataset"
)

// resample maps the grid onto uniform axes with the given spacing using
// separable natural cubic splines, first along x for every scan line, then
// along y for every resampled column. Probe scans are recorded on regular
// (if unevenly spaced) axes, so the separable pass is equivalent to a full
// 2D fit.
func resample(g dataset.Grid2D, step float64) (dataset.Grid2D, error) {
	nx, ny := g.NX(), g.NY()
	if nx < 2 || ny < 2 {
		return dataset.Grid2D{}, errors.Errorf("scanimage: cannot resample a %dx%d grid", nx, ny)
	}
	newX := uniformAxis(g.X[0], g.X[nx-1], step)
	newY := uniformAxis(g.Y[0], g.Y[ny-1], step)
	if len(newX) < 2 || len(newY) < 2 {
		return dataset.Grid2D{}, errors.Errorf(
			"scanimage: step %g leaves a degenerate %dx%d grid", step, len(newX), len(newY))
	}

	// pass 1: every original row onto newX
	rows := make([][]float64, ny)
	var spline interp.NaturalCubic
	for j, row := range g.Currents {
		if err := spline.Fit(g.X, row); err != nil {
			return dataset.Grid2D{}, errors.Wrapf(err, "scanimage: row %d spline", j)
		}
		out := make([]float64, len(newX))
		for i, x := range newX {
			out[i] = spline.Predict(x)
		}
		rows[j] = out
	}

	// pass 2: every resampled column onto newY
	out := make([][]float64, len(newY))
	for j := range out {
		out[j] = make([]float64, len(newX))
	}
	col := make([]float64, ny)
	for i := range newX {
		for j := 0; j < ny; j++ {
			col[j] = rows[j][i]
		}
		if err := spline.Fit(g.Y, col); err != nil {
			return dataset.Grid2D{}, errors.Wrapf(err, "scanimage: column %d spline", i)
		}
		for j, y := range newY {
			out[j][i] = spline.Predict(y)
		}
	}
	return dataset.Grid2D{X: newX, Y: newY, Currents: out}, nil
}

// uniformAxis covers [lo, hi] with evenly spaced points at multiples of
// step, staying inside the original range.
func uniformAxis(lo, hi, step float64) []float64 {
	start := math.Ceil(lo/step) * step
	var out []float64
	for v := start; v <= hi+1e-9; v += step {
		out = append(out, v)
	}
	return out
}
