package scanimage

import (
	"image"
	"image/color"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"secm-flux/internal/dataset"
)

// GrayImage renders a normalized grid as an 8-bit grayscale image. Row 0 of
// the grid is the bottom scan line, so the image is flipped vertically to
// put it at the bottom of the picture.
func GrayImage(g dataset.Grid2D) (*image.Gray, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	nx, ny := g.NX(), g.NY()
	img := image.NewGray(image.Rect(0, 0, nx, ny))
	for j, row := range g.Currents {
		for i, v := range row {
			img.SetGray(i, ny-1-j, color.Gray{Y: gray8(v)})
		}
	}
	return img, nil
}

// WriteTIFF writes a normalized grid to path as a deflate-compressed
// grayscale TIFF.
func WriteTIFF(path string, g dataset.Grid2D) error {
	img, err := GrayImage(g)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "scanimage: create tiff")
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return errors.Wrap(err, "scanimage: encode tiff")
	}
	return errors.Wrap(f.Close(), "scanimage: close tiff")
}
