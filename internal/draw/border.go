// Package draw composites decorations onto bitmap rasters: a random border
// frame and a logo overlay.
package draw

import (
	"errors"
	"fmt"
	"math/rand"

	"bmper/internal/bitmap"
)

var (
	// ErrInvalidInput is returned for arguments outside the operation's
	// domain, such as a negative margin.
	ErrInvalidInput = errors.New("draw: invalid input")

	// ErrLogoTooLarge is returned when a logo does not fit the destination
	// at the requested margin.
	ErrLogoTooLarge = errors.New("draw: logo too large")
)

// Border paints a solid random color over the frame of the raster, width
// pixels deep. The color is drawn once per call from rng: indexed rasters
// get a random palette index, 16 and 24 bpp rasters get a random color with
// every channel drawn independently. A width of zero or less leaves the
// raster untouched.
func Border(r *bitmap.Raster, width int, rng *rand.Rand) error {
	if width <= 0 {
		return nil
	}

	value, err := borderValue(r.BitsPerPixel, rng)
	if err != nil {
		return err
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if !onBorder(x, y, r.Width, r.Height, width) {
				continue
			}

			err = r.SetPixel(x, y, value)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func borderValue(bitsPerPixel int, rng *rand.Rand) (uint32, error) {
	switch bitsPerPixel {
	case 1, 4, 8:
		return uint32(rng.Intn(1 << bitsPerPixel)), nil
	case 16:
		r := uint32(rng.Intn(32))
		g := uint32(rng.Intn(32))
		b := uint32(rng.Intn(32))

		return bitmap.PackRGB555(r, g, b), nil
	case 24:
		r := uint32(rng.Intn(256))
		g := uint32(rng.Intn(256))
		b := uint32(rng.Intn(256))

		return bitmap.PackRGB888(r, g, b), nil
	}

	return 0, fmt.Errorf("%w: border at %d bpp", bitmap.ErrUnsupportedDepth, bitsPerPixel)
}

// onBorder reports whether (x, y) falls on the frame. The first edge of each
// axis runs one pixel deeper than width and the opposite edge one pixel
// shallower.
func onBorder(x, y, w, h, width int) bool {
	return x <= width || x > w-width || y <= width || y > h-width
}
