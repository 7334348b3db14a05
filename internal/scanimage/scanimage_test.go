package scanimage

import (
	"math"
	"os"
	"testing"

	"secm-flux/internal/dataset"
)

func tiltedGrid() dataset.Grid2D {
	// v(x, y) = f(y) + 2x with f(y) = 10y
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 2}
	cur := make([][]float64, len(y))
	for j := range y {
		cur[j] = make([]float64, len(x))
		for i := range x {
			cur[j][i] = 10*y[j] + 2*x[i]
		}
	}
	return dataset.Grid2D{X: x, Y: y, Currents: cur}
}

func TestSlopeCorrectX(t *testing.T) {
	g := tiltedGrid()
	res, err := Process(g, Options{SlopeX: true, SlopeXRef: 1})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for j, row := range res.Grid.Currents {
		for i, v := range row {
			if math.Abs(v-row[0]) > 1e-9 {
				t.Fatalf("row %d not flat after x correction: point %d is %v, start %v", j, i, v, row[0])
			}
		}
	}
}

func TestSlopeCorrectY(t *testing.T) {
	g := tiltedGrid()
	res, err := Process(g, Options{SlopeY: true, SlopeYRef: 0})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for j, row := range res.Grid.Currents {
		for i, v := range row {
			if math.Abs(v-res.Grid.Currents[0][i]) > 1e-9 {
				t.Fatalf("column %d not flat after y correction: row %d is %v", i, j, v)
			}
		}
	}
}

func TestSlopeCorrectBothAxes(t *testing.T) {
	// Both trends removed in one pass leaves the plane flat.
	g := tiltedGrid()
	res, err := Process(g, Options{SlopeX: true, SlopeXRef: 1, SlopeY: true, SlopeYRef: 0})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	base := res.Grid.Currents[0][0]
	for j, row := range res.Grid.Currents {
		for i, v := range row {
			if math.Abs(v-base) > 1e-9 {
				t.Fatalf("grid not flat after both corrections: (%d,%d) is %v, base %v", i, j, v, base)
			}
		}
	}
}

func TestSlopeCorrectBadReference(t *testing.T) {
	g := tiltedGrid()
	if _, err := Process(g, Options{SlopeX: true, SlopeXRef: 7}); err == nil {
		t.Fatal("expected error for out-of-range reference row")
	}
	if _, err := Process(g, Options{SlopeY: true, SlopeYRef: -1}); err == nil {
		t.Fatal("expected error for out-of-range reference column")
	}
}

func TestResampleLinearField(t *testing.T) {
	// uneven axes, linear field: cubic resampling must reproduce it exactly
	x := []float64{0, 0.7, 1.5, 2.2, 3.0}
	y := []float64{0, 0.9, 2.1, 3.0}
	cur := make([][]float64, len(y))
	for j := range y {
		cur[j] = make([]float64, len(x))
		for i := range x {
			cur[j][i] = 3*x[i] + 2*y[j]
		}
	}
	g := dataset.Grid2D{X: x, Y: y, Currents: cur}

	res, err := Process(g, Options{Interpolate: true, StepUM: 1})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Grid.NX() != 4 || res.Grid.NY() != 4 {
		t.Fatalf("resampled shape: %dx%d", res.Grid.NX(), res.Grid.NY())
	}
	for j, yv := range res.Grid.Y {
		for i, xv := range res.Grid.X {
			want := 3*xv + 2*yv
			if math.Abs(res.Grid.Currents[j][i]-want) > 1e-9 {
				t.Fatalf("resampled (%v,%v): got %v want %v", xv, yv, res.Grid.Currents[j][i], want)
			}
		}
	}
}

func TestResampleDegenerate(t *testing.T) {
	g := tiltedGrid()
	if _, err := Process(g, Options{Interpolate: true, StepUM: 100}); err == nil {
		t.Fatal("expected error for a step wider than the grid")
	}
}

func TestNormalize(t *testing.T) {
	g := dataset.Grid2D{
		X:        []float64{0, 1},
		Y:        []float64{0, 1},
		Currents: [][]float64{{-2, 0}, {2, 6}},
	}
	res, err := Process(g, Options{Normalize: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := [][]float64{{0, 0.25}, {0.5, 1}}
	for j := range want {
		for i := range want[j] {
			if math.Abs(res.Grid.Currents[j][i]-want[j][i]) > 1e-12 {
				t.Fatalf("normalized (%d,%d): got %v want %v", i, j, res.Grid.Currents[j][i], want[j][i])
			}
		}
	}
	if !res.Normalized {
		t.Fatal("result not marked normalized")
	}
}

func TestNormalizeFlatGrid(t *testing.T) {
	g := dataset.Grid2D{
		X:        []float64{0, 1},
		Y:        []float64{0, 1},
		Currents: [][]float64{{3, 3}, {3, 3}},
	}
	res, err := Process(g, Options{Normalize: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for _, row := range res.Grid.Currents {
		for _, v := range row {
			if v != 0 {
				t.Fatalf("flat grid should normalize to zeros, got %v", v)
			}
		}
	}
}

// stepEdges marks pixels whose right neighbor jumps by more than half the
// normalized range. It stands in for the OpenCV detector in tests.
type stepEdges struct{}

func (stepEdges) Detect(pixels [][]float64) ([][]bool, error) {
	mask := make([][]bool, len(pixels))
	for j, row := range pixels {
		mask[j] = make([]bool, len(row))
		for i := 0; i+1 < len(row); i++ {
			if math.Abs(row[i+1]-row[i]) > 0.5 {
				mask[j][i] = true
			}
		}
	}
	return mask, nil
}

func TestEdgeMaskOnStepBoundary(t *testing.T) {
	// sharp step between columns 1 and 2
	g := dataset.Grid2D{
		X:        []float64{0, 1, 2, 3},
		Y:        []float64{0, 1},
		Currents: [][]float64{{0, 0, 5, 5}, {0, 0, 5, 5}},
	}
	res, err := Process(g, Options{Normalize: true, Edges: stepEdges{}})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for j := range res.EdgeMask {
		for i, on := range res.EdgeMask[j] {
			if on != (i == 1) {
				t.Fatalf("edge mask (%d,%d): got %v", i, j, on)
			}
		}
	}
}

func TestEdgesResampleMismatchedDensities(t *testing.T) {
	// Square pixels before edge detection: a y step twice the x step gets
	// resampled even without an explicit interpolation request.
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 2, 4}
	cur := make([][]float64, len(y))
	for j := range y {
		cur[j] = make([]float64, len(x))
		for i := range x {
			cur[j][i] = x[i]
		}
	}
	g := dataset.Grid2D{X: x, Y: y, Currents: cur}

	res, err := Process(g, Options{Normalize: true, Edges: stepEdges{}})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Grid.NX() != 4 || res.Grid.NY() != 5 {
		t.Fatalf("grid not resampled before edges: %dx%d", res.Grid.NX(), res.Grid.NY())
	}
	if len(res.EdgeMask) != 5 || len(res.EdgeMask[0]) != 4 {
		t.Fatalf("edge mask shape %dx%d does not match the resampled grid",
			len(res.EdgeMask[0]), len(res.EdgeMask))
	}
}

func TestEdgesKeepIsotropicGrid(t *testing.T) {
	// Evenly sampled grids pass to the detector untouched.
	g := dataset.Grid2D{
		X:        []float64{0, 1, 2, 3},
		Y:        []float64{0, 1},
		Currents: [][]float64{{0, 0, 5, 5}, {0, 0, 5, 5}},
	}
	res, err := Process(g, Options{Normalize: true, Edges: stepEdges{}})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Grid.NX() != 4 || res.Grid.NY() != 2 {
		t.Fatalf("isotropic grid reshaped to %dx%d", res.Grid.NX(), res.Grid.NY())
	}
}

func TestEdgesRequireNormalize(t *testing.T) {
	g := tiltedGrid()
	if _, err := Process(g, Options{Edges: stepEdges{}}); err == nil {
		t.Fatal("expected error when edges requested without normalization")
	}
}

func TestProcessIdempotent(t *testing.T) {
	g := tiltedGrid()
	opts := Options{SlopeX: true, Interpolate: true, StepUM: 1, Normalize: true}
	a, err := Process(g, opts)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	b, err := Process(g, opts)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	for j := range a.Grid.Currents {
		for i := range a.Grid.Currents[j] {
			if a.Grid.Currents[j][i] != b.Grid.Currents[j][i] {
				t.Fatalf("passes differ at (%d,%d)", i, j)
			}
		}
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	g := tiltedGrid()
	orig := g.Copy()
	if _, err := Process(g, Options{SlopeX: true, Normalize: true}); err != nil {
		t.Fatalf("process: %v", err)
	}
	for j := range orig.Currents {
		for i := range orig.Currents[j] {
			if g.Currents[j][i] != orig.Currents[j][i] {
				t.Fatalf("input mutated at (%d,%d)", i, j)
			}
		}
	}
}

func TestGray8(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{-0.5, 0}, {0, 0}, {0.25, 64}, {0.5, 128}, {1, 255}, {1.5, 255},
	}
	for _, c := range cases {
		if got := gray8(c.in); got != c.want {
			t.Fatalf("gray8(%v): got %d want %d", c.in, got, c.want)
		}
	}
}

func TestGrayImage(t *testing.T) {
	g := dataset.Grid2D{
		X:        []float64{0, 1},
		Y:        []float64{0, 1},
		Currents: [][]float64{{0, 0.5}, {1, 0.25}},
	}
	img, err := GrayImage(g)
	if err != nil {
		t.Fatalf("gray image: %v", err)
	}
	// grid row 0 renders at the bottom of the image
	if got := img.GrayAt(0, 1).Y; got != 0 {
		t.Fatalf("bottom-left: got %d want 0", got)
	}
	if got := img.GrayAt(0, 0).Y; got != 255 {
		t.Fatalf("top-left: got %d want 255", got)
	}
	if got := img.GrayAt(1, 1).Y; got != 128 {
		t.Fatalf("bottom-right: got %d want 128", got)
	}
}

func TestWriteTIFF(t *testing.T) {
	g := dataset.Grid2D{
		X:        []float64{0, 1, 2},
		Y:        []float64{0, 1},
		Currents: [][]float64{{0, 0.5, 1}, {1, 0.5, 0}},
	}
	path := t.TempDir() + "/scan.tiff"
	if err := WriteTIFF(path, g); err != nil {
		t.Fatalf("write tiff: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatal("empty tiff file")
	}
}
