package bitmap

import "errors"

var (
	// ErrInvalidSignature is returned when a stream does not begin with the
	// two-byte "BM" magic.
	ErrInvalidSignature = errors.New("bitmap: invalid signature")

	// ErrInvalidHeader is returned when a header field contradicts the
	// format, for example an info header size that matches no known variant.
	ErrInvalidHeader = errors.New("bitmap: invalid header")

	// ErrUnsupportedDepth is returned when an operation meets a bit depth it
	// does not implement.
	ErrUnsupportedDepth = errors.New("bitmap: unsupported bit depth")

	// ErrUnsupportedCompression is returned when an operation meets a
	// compression scheme it does not implement.
	ErrUnsupportedCompression = errors.New("bitmap: unsupported compression")

	// ErrOutOfBounds is returned for pixel coordinates outside the raster.
	ErrOutOfBounds = errors.New("bitmap: coordinate out of bounds")
)
