// Package codec implements the run-length encodings of the supported raster
// containers: the BI_RLE8 compression of bitmap files as specified for
// BITMAPINFOHEADER, and the byte-oriented scanline compression of PCX files.
package codec

import "errors"

var (
	// ErrTruncatedStream is returned when a compressed stream ends in the
	// middle of a token or its payload.
	ErrTruncatedStream = errors.New("codec: truncated stream")

	// ErrInvalidDimensions is returned for negative raster dimensions.
	ErrInvalidDimensions = errors.New("codec: invalid dimensions")
)
