package scanimage

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// EdgeDetector marks the feature edges of a normalized image. Values are
// expected in [0, 1].
type EdgeDetector interface {
	Detect(pixels [][]float64) ([][]bool, error)
}

// CannyDetector finds edges with a Gaussian blur followed by the Canny
// operator.
type CannyDetector struct {
	BlurKernel    int
	LowThreshold  float32
	HighThreshold float32
}

// NewCannyDetector returns a detector with the standard thresholds.
func NewCannyDetector() *CannyDetector {
	return &CannyDetector{BlurKernel: 5, LowThreshold: 50, HighThreshold: 150}
}

// Detect implements EdgeDetector.
func (d *CannyDetector) Detect(pixels [][]float64) ([][]bool, error) {
	rows := len(pixels)
	if rows == 0 || len(pixels[0]) == 0 {
		return nil, errors.New("scanimage: empty image")
	}
	cols := len(pixels[0])

	src := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	defer src.Close()
	for j, row := range pixels {
		if len(row) != cols {
			return nil, errors.Errorf("scanimage: ragged row %d", j)
		}
		for i, v := range row {
			src.SetUCharAt(j, i, gray8(v))
		}
	}

	k := d.BlurKernel
	if k < 1 {
		k = 5
	}
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, d.LowThreshold, d.HighThreshold)

	mask := make([][]bool, rows)
	for j := range mask {
		mask[j] = make([]bool, cols)
		for i := range mask[j] {
			mask[j][i] = edges.GetUCharAt(j, i) > 0
		}
	}
	return mask, nil
}

// gray8 maps a [0, 1] value to an 8-bit gray level, clamping out-of-range
// input.
func gray8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
