package codec

import "fmt"

// BI_RLE8 escape opcodes, following a zero count byte.
const (
	escEndOfLine   = 0x00
	escEndOfBitmap = 0x01
	escDelta       = 0x02
)

// DecompressRLE8 expands a BI_RLE8 stream into packed 8 bpp rows of the
// given geometry, width bytes per row without padding, in storage order.
//
// Pixels the stream never reaches keep the value zero. Runs that would pass
// the end of the raster are clamped to it, as are delta jumps. Decoding ends
// at the end-of-bitmap escape or at a clean end of the stream; a stream that
// ends in the middle of a token or its payload fails with
// ErrTruncatedStream.
func DecompressRLE8(src []byte, width, height int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	dest := make([]byte, width*height)
	srcIdx := 0
	destIdx := 0

	for srcIdx < len(src) {
		if srcIdx+2 > len(src) {
			return nil, fmt.Errorf("%w: token value at offset %d", ErrTruncatedStream, srcIdx+1)
		}

		count := src[srcIdx]
		value := src[srcIdx+1]
		srcIdx += 2

		if count > 0 {
			// Encoded run: value repeated count times.
			for n := int(count); n > 0 && destIdx < len(dest); n-- {
				dest[destIdx] = value
				destIdx++
			}

			continue
		}

		switch value {
		case escEndOfLine:
			// Advance to the next row boundary; a cursor already on one
			// stays put.
			if width > 0 && destIdx%width != 0 {
				destIdx += width - destIdx%width
			}
		case escEndOfBitmap:
			return dest, nil
		case escDelta:
			if srcIdx+2 > len(src) {
				return nil, fmt.Errorf("%w: delta operands at offset %d", ErrTruncatedStream, srcIdx)
			}

			right := int(src[srcIdx])
			up := int(src[srcIdx+1])
			srcIdx += 2

			destIdx += right + up*width
			if destIdx > len(dest) {
				destIdx = len(dest)
			}
		default:
			// Absolute mode: value literal pixels follow, padded to an even
			// byte count. The pad byte is consumed and discarded.
			n := int(value)
			if srcIdx+n > len(src) {
				return nil, fmt.Errorf("%w: absolute run at offset %d", ErrTruncatedStream, srcIdx)
			}

			copied := copy(dest[destIdx:], src[srcIdx:srcIdx+n])
			destIdx += copied
			srcIdx += n

			if n%2 == 1 {
				if srcIdx >= len(src) {
					return nil, fmt.Errorf("%w: absolute run pad at offset %d", ErrTruncatedStream, srcIdx)
				}
				srcIdx++
			}
		}
	}

	// The stream ended without an end-of-bitmap escape; the pixels it never
	// reached stay zero.
	return dest, nil
}

// CompressRLE8 encodes packed 8 bpp rows, width bytes per row, into a
// BI_RLE8 stream. Every row is terminated with the end-of-line escape except
// the last, which is followed by end-of-bitmap.
//
// The encoding is canonical: maximal runs of three or more equal bytes
// become encoded runs split at 255, stretches without such a run become
// absolute runs split at 255, and leftovers too short for absolute mode fall
// back to one encoded run per byte. DecompressRLE8 inverts it exactly.
func CompressRLE8(src []byte, width int) []byte {
	out := make([]byte, 0, len(src)/2+2)

	if width > 0 {
		rows := len(src) / width
		for y := 0; y < rows; y++ {
			out = compressRow(out, src[y*width:(y+1)*width])

			if y < rows-1 {
				out = append(out, 0x00, escEndOfLine)
			}
		}
	}

	return append(out, 0x00, escEndOfBitmap)
}

func compressRow(out []byte, row []byte) []byte {
	i := 0
	for i < len(row) {
		run := runLength(row, i)
		if run >= 3 {
			for run > 0 {
				n := run
				if n > 255 {
					n = 255
				}

				out = append(out, byte(n), row[i])
				i += n
				run -= n
			}

			continue
		}

		// Literal stretch: extend until the next run of three or the row
		// end.
		j := i
		for j < len(row) {
			r := runLength(row, j)
			if r >= 3 {
				break
			}
			j += r
		}

		out = appendAbsolute(out, row[i:j])
		i = j
	}

	return out
}

func runLength(row []byte, i int) int {
	n := 1
	for i+n < len(row) && row[i+n] == row[i] {
		n++
	}

	return n
}

func appendAbsolute(out []byte, lit []byte) []byte {
	for len(lit) > 0 {
		if len(lit) < 3 {
			// Absolute mode cannot express fewer than three pixels.
			for _, v := range lit {
				out = append(out, 0x01, v)
			}

			return out
		}

		n := len(lit)
		if n > 255 {
			n = 255
		}

		out = append(out, 0x00, byte(n))
		out = append(out, lit[:n]...)

		if n%2 == 1 {
			out = append(out, 0x00)
		}

		lit = lit[n:]
	}

	return out
}
