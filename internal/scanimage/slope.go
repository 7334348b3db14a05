package scanimage

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"secm-flux/internal/dataset"
)

// slopeCorrect removes the linear tilt of the scan plane. The trend is fit
// by least squares to one reference row (XAxis) or column (YAxis) and
// subtracted from every line of the grid, keeping the reference line's
// starting level.
func slopeCorrect(g *dataset.Grid2D, axis Axis, ref int) error {
	switch axis {
	case XAxis:
		if ref < 0 || ref >= g.NY() {
			return errors.Errorf("scanimage: reference row %d not in 0..%d", ref, g.NY()-1)
		}
		slope, err := fitLine(g.X, g.Currents[ref])
		if err != nil {
			return err
		}
		for _, row := range g.Currents {
			for i, x := range g.X {
				row[i] -= slope * (x - g.X[0])
			}
		}
	case YAxis:
		if ref < 0 || ref >= g.NX() {
			return errors.Errorf("scanimage: reference column %d not in 0..%d", ref, g.NX()-1)
		}
		col := make([]float64, g.NY())
		for j := range col {
			col[j] = g.Currents[j][ref]
		}
		slope, err := fitLine(g.Y, col)
		if err != nil {
			return err
		}
		for j, row := range g.Currents {
			d := slope * (g.Y[j] - g.Y[0])
			for i := range row {
				row[i] -= d
			}
		}
	default:
		return errors.Errorf("scanimage: unknown axis %d", int(axis))
	}
	return nil
}

// fitLine returns the least-squares slope of ys over xs.
func fitLine(xs, ys []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, errors.New("scanimage: need at least 2 points to fit a slope")
	}
	a := mat.NewDense(len(xs), 2, nil)
	b := mat.NewVecDense(len(xs), nil)
	for i, x := range xs {
		a.Set(i, 0, 1)
		a.Set(i, 1, x)
		b.SetVec(i, ys[i])
	}
	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return 0, errors.Wrap(err, "scanimage: slope fit")
	}
	return coef.AtVec(1), nil
}
