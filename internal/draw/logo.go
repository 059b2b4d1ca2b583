package draw

import (
	"fmt"

	"bmper/internal/bitmap"
)

// Logo copies a 24 bpp logo raster into the corner of a 24 bpp destination,
// inset margin pixels from the right edge and from the first stored row. On
// a bottom-up raster that is the bottom-right corner of the displayed image.
func Logo(dst, logo *bitmap.Raster, margin int) error {
	if margin < 0 {
		return fmt.Errorf("%w: negative margin %d", ErrInvalidInput, margin)
	}

	if dst.BitsPerPixel != 24 || logo.BitsPerPixel != 24 {
		return fmt.Errorf("%w: logo overlay needs 24 bpp, got %d bpp onto %d bpp",
			bitmap.ErrUnsupportedDepth, logo.BitsPerPixel, dst.BitsPerPixel)
	}

	if logo.Width > dst.Width-margin || logo.Height > dst.Height-margin {
		return fmt.Errorf("%w: %dx%d onto %dx%d at margin %d",
			ErrLogoTooLarge, logo.Width, logo.Height, dst.Width, dst.Height, margin)
	}

	left := dst.Width - margin - logo.Width

	for y := 0; y < logo.Height; y++ {
		src := logo.Data[y*logo.Stride : y*logo.Stride+logo.Width*3]
		off := (margin+y)*dst.Stride + left*3
		copy(dst.Data[off:off+logo.Width*3], src)
	}

	return nil
}
