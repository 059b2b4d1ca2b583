// Package bitmap implements the Windows device-independent bitmap container:
// BITMAPFILEHEADER, the four info header variants distinguished by their Size
// member (BITMAPCOREHEADER, BITMAPINFOHEADER, BITMAPV4HEADER, BITMAPV5HEADER),
// the color table, and the pixel raster with depth-aware access at
// 1/4/8/16/24 bits per pixel.
package bitmap

// Compression is the biCompression field of an info header.
type Compression uint32

const (
	// BIRGB is an uncompressed raster.
	BIRGB Compression = 0

	// BIRLE8 is the run-length encoding for 8 bpp rasters: two-byte tokens
	// of a count byte followed by a color index, with escape sequences for
	// end-of-line, end-of-bitmap, delta jumps and absolute runs.
	BIRLE8 Compression = 1

	// BIRLE4 is the run-length encoding for 4 bpp rasters.
	BIRLE4 Compression = 2

	// BIBitFields marks an uncompressed raster with explicit channel masks,
	// valid for 16 and 32 bpp.
	BIBitFields Compression = 3

	// BIJPEG marks an embedded JPEG image.
	BIJPEG Compression = 4

	// BIPNG marks an embedded PNG image.
	BIPNG Compression = 5
)

var compressionNames = map[Compression]string{
	BIRGB:       "BI_RGB",
	BIRLE8:      "BI_RLE8",
	BIRLE4:      "BI_RLE4",
	BIBitFields: "BI_BITFIELDS",
	BIJPEG:      "BI_JPEG",
	BIPNG:       "BI_PNG",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return "BI_UNKNOWN"
}

// RGB is one color table entry. On disk entries are stored blue-first
// (RGBTRIPLE / RGBQUAD); in memory the channels carry their own names.
type RGB struct {
	R, G, B uint8
}

// Palette is an ordered color table. For indexed depths a stored pixel value
// is an index into the palette.
type Palette []RGB

// Clone returns an independent copy of the palette.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

// RowStride returns the number of bytes one raster row occupies in the file,
// including the padding that aligns every row to a 32-bit boundary.
func RowStride(width, bitsPerPixel int) int {
	return (bitsPerPixel*width + 31) / 32 * 4
}
