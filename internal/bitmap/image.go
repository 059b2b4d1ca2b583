package bitmap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"bmper/internal/codec"
)

// Image is a decoded bitmap file: file header, info header, color table and
// raster. The raster is always held uncompressed; InfoHeader.Compression
// describes the on-disk encoding and drives Encode. Decode expands BI_RLE8
// files and keeps the compression field, so a decode/encode round trip
// preserves the encoding.
type Image struct {
	FileHeader FileHeader
	InfoHeader InfoHeader
	Palette    Palette
	Raster     *Raster
}

// New wraps a raster and color table in an image with a BITMAPINFOHEADER.
// The file header is computed on Encode.
func New(raster *Raster, palette Palette) *Image {
	return &Image{
		InfoHeader: NewInfoHeader(raster.Width, raster.Height, raster.BitsPerPixel),
		Palette:    palette,
		Raster:     raster,
	}
}

// Decode reads one bitmap file from the stream. Top-down rasters are flipped
// into bottom-up storage and the height normalized to positive. Bytes after
// the raster are left unread.
func Decode(r io.Reader) (*Image, error) {
	img := &Image{}

	err := img.FileHeader.Deserialize(r)
	if err != nil {
		return nil, fmt.Errorf("bitmap: file header: %w", err)
	}

	err = img.InfoHeader.Deserialize(r)
	if err != nil {
		return nil, fmt.Errorf("bitmap: info header: %w", err)
	}

	hdr := &img.InfoHeader
	if !SupportedDepth(hdr.BitsPerPixel()) {
		return nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, hdr.BitsPerPixel())
	}

	paletteBytes, err := img.readPalette(r)
	if err != nil {
		return nil, err
	}

	// Writers may leave a gap between the color table and the raster.
	consumed := FileHeaderSize + int(hdr.Version) + paletteBytes
	if gap := int64(img.FileHeader.OffsetBits) - int64(consumed); gap > 0 {
		_, err = io.CopyN(io.Discard, r, gap)
		if err != nil {
			return nil, fmt.Errorf("bitmap: skip to raster: %w", err)
		}
	}

	img.Raster, err = NewRaster(hdr.Width(), hdr.Height(), hdr.BitsPerPixel())
	if err != nil {
		return nil, err
	}

	err = img.readRaster(r)
	if err != nil {
		return nil, err
	}

	if hdr.TopDown() {
		img.Raster.FlipRows()
		hdr.ImageHeight = -hdr.ImageHeight
	}

	return img, nil
}

func (img *Image) readPalette(r io.Reader) (int, error) {
	colors := img.InfoHeader.PaletteColors()
	if colors == 0 {
		return 0, nil
	}

	entrySize := 4
	if img.InfoHeader.Version == HeaderCore {
		entrySize = 3
	}

	raw := make([]byte, colors*entrySize)

	_, err := io.ReadFull(r, raw)
	if err != nil {
		return 0, fmt.Errorf("bitmap: color table: %w", err)
	}

	img.Palette = make(Palette, colors)
	for i := range img.Palette {
		entry := raw[i*entrySize:]
		img.Palette[i] = RGB{R: entry[2], G: entry[1], B: entry[0]}
	}

	return len(raw), nil
}

func (img *Image) readRaster(r io.Reader) error {
	hdr := &img.InfoHeader

	switch hdr.Compression {
	case BIRGB:
		_, err := io.ReadFull(r, img.Raster.Data)
		if err != nil {
			return fmt.Errorf("bitmap: raster: %w", err)
		}

		return nil
	case BIRLE8:
		if hdr.BitsPerPixel() != 8 {
			return fmt.Errorf("%w: BI_RLE8 at %d bpp", ErrInvalidHeader, hdr.BitsPerPixel())
		}

		if hdr.TopDown() {
			return fmt.Errorf("%w: BI_RLE8 with top-down raster", ErrInvalidHeader)
		}

		compressed, err := img.readCompressed(r)
		if err != nil {
			return err
		}

		packed, err := codec.DecompressRLE8(compressed, hdr.Width(), hdr.Height())
		if err != nil {
			return err
		}

		return img.Raster.SetPackedRows(packed)
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedCompression, hdr.Compression)
}

func (img *Image) readCompressed(r io.Reader) ([]byte, error) {
	size := img.InfoHeader.SizeImage
	if size == 0 {
		// Some writers leave biSizeImage zero even for compressed rasters;
		// take everything that is left.
		compressed, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("bitmap: compressed raster: %w", err)
		}

		return compressed, nil
	}

	compressed := make([]byte, size)

	_, err := io.ReadFull(r, compressed)
	if err != nil {
		return nil, fmt.Errorf("bitmap: compressed raster: %w", err)
	}

	return compressed, nil
}

// Encode writes the image as a bitmap file, compressing the raster when the
// info header asks for BI_RLE8. File size, raster offset, raster size and
// color table count are recomputed from the actual content.
func (img *Image) Encode(w io.Writer) error {
	hdr := img.InfoHeader

	body, err := img.encodeRaster(&hdr)
	if err != nil {
		return err
	}

	entrySize := 4
	if hdr.Version == HeaderCore {
		entrySize = 3
	}

	if hdr.Version != HeaderCore && hdr.BitsPerPixel() <= 8 &&
		len(img.Palette) != 1<<hdr.BitCount {
		hdr.ClrUsed = uint32(len(img.Palette))
	}

	offset := FileHeaderSize + int(hdr.Version) + len(img.Palette)*entrySize
	fh := NewFileHeader(uint32(offset+len(body)), uint32(offset))

	buf := new(bytes.Buffer)
	_, _ = buf.Write(fh.Serialize())
	_, _ = buf.Write(hdr.Serialize())

	for _, c := range img.Palette {
		if entrySize == 3 {
			_, _ = buf.Write([]byte{c.B, c.G, c.R})
		} else {
			_, _ = buf.Write([]byte{c.B, c.G, c.R, 0})
		}
	}

	_, _ = buf.Write(body)

	_, err = w.Write(buf.Bytes())

	return err
}

func (img *Image) encodeRaster(hdr *InfoHeader) ([]byte, error) {
	switch hdr.Compression {
	case BIRGB:
		if hdr.Version != HeaderCore {
			hdr.SizeImage = uint32(len(img.Raster.Data))
		}

		return img.Raster.Data, nil
	case BIRLE8:
		if hdr.BitsPerPixel() != 8 {
			return nil, fmt.Errorf("%w: BI_RLE8 at %d bpp", ErrInvalidHeader, hdr.BitsPerPixel())
		}

		packed, err := img.Raster.PackedRows()
		if err != nil {
			return nil, err
		}

		body := codec.CompressRLE8(packed, img.Raster.Width)
		hdr.SizeImage = uint32(len(body))

		return body, nil
	}

	return nil, fmt.Errorf("%w: encode %s", ErrUnsupportedCompression, hdr.Compression)
}

// ReadFile decodes the bitmap file at path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return img, nil
}

// WriteFile encodes the image into the file at path, replacing it if it
// exists.
func (img *Image) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)

	err = img.Encode(bw)
	if err != nil {
		f.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	err = bw.Flush()
	if err != nil {
		f.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

// RGBA renders the image into top-down RGBA bytes, one display row after
// another, resolving indexed pixels through the color table. Alpha is always
// 255.
func (img *Image) RGBA() ([]byte, error) {
	w, h := img.Raster.Width, img.Raster.Height
	out := make([]byte, w*h*4)
	i := 0

	for dy := 0; dy < h; dy++ {
		y := h - 1 - dy
		if img.InfoHeader.TopDown() {
			y = dy
		}

		for x := 0; x < w; x++ {
			v, err := img.Raster.Pixel(x, y)
			if err != nil {
				return nil, err
			}

			c, err := img.resolve(v)
			if err != nil {
				return nil, err
			}

			out[i] = c.R
			out[i+1] = c.G
			out[i+2] = c.B
			out[i+3] = 0xFF
			i += 4
		}
	}

	return out, nil
}

func (img *Image) resolve(v uint32) (RGB, error) {
	switch {
	case img.Raster.BitsPerPixel <= 8:
		if int(v) >= len(img.Palette) {
			return RGB{}, fmt.Errorf("%w: color index %d with %d palette entries",
				ErrOutOfBounds, v, len(img.Palette))
		}

		return img.Palette[v], nil
	case img.Raster.BitsPerPixel == 16:
		r, g, b := UnpackRGB555(v)

		return RGB{R: expand5(r), G: expand5(g), B: expand5(b)}, nil
	default:
		r, g, b := UnpackRGB888(v)

		return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
	}
}
