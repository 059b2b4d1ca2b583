package codec

import "fmt"

// PCX run marker: the top two bits of a count byte.
const (
	runMarker    = 0xC0
	runCountMask = 0x3F
)

// DecodeScanline decodes one PCX RLE scanline of rowBytes bytes from the
// head of src, returning the decoded row and the number of source bytes
// consumed. Rows are encoded independently, so callers advance by the
// consumed count and call again for the next row.
//
// A byte with the top two bits set is a run marker carrying a count in its
// low six bits, followed by the byte to repeat; any other byte is a literal.
// A run that would pass the end of the row is truncated to it.
func DecodeScanline(src []byte, rowBytes int) ([]byte, int, error) {
	if rowBytes < 0 {
		return nil, 0, fmt.Errorf("%w: row of %d bytes", ErrInvalidDimensions, rowBytes)
	}

	row := make([]byte, 0, rowBytes)
	idx := 0

	for len(row) < rowBytes {
		if idx >= len(src) {
			return nil, idx, fmt.Errorf("%w: scanline byte at offset %d", ErrTruncatedStream, idx)
		}

		b := src[idx]
		idx++

		if b&runMarker != runMarker {
			row = append(row, b)

			continue
		}

		if idx >= len(src) {
			return nil, idx, fmt.Errorf("%w: run value at offset %d", ErrTruncatedStream, idx)
		}

		value := src[idx]
		idx++

		count := int(b & runCountMask)
		if count > rowBytes-len(row) {
			count = rowBytes - len(row)
		}

		for ; count > 0; count-- {
			row = append(row, value)
		}
	}

	return row, idx, nil
}
