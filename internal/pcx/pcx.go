// Package pcx reads ZSoft PCX files: the 128-byte header, the run-length
// scanline stream, and the 256-color palette block at the end of 8 bpp
// files. Two layouts are supported, 8 bpp single-plane indexed and version 5
// three-plane true color.
package pcx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"bmper/internal/bitmap"
	"bmper/internal/codec"
)

const (
	headerSize   = 128
	manufacturer = 0x0A

	// An 8 bpp palette block: one 0x0C marker byte plus 256 RGB triples.
	paletteMarker = 0x0C
	paletteBlock  = 1 + 256*3
)

var (
	// ErrInvalidHeader is returned for a header that is truncated or
	// contradicts itself.
	ErrInvalidHeader = errors.New("pcx: invalid header")

	// ErrUnsupportedFormat is returned for depth and plane combinations
	// other than 8 bpp with 1 plane or version 5 with 3 planes.
	ErrUnsupportedFormat = errors.New("pcx: unsupported format")

	// ErrMissingPalette is returned when an 8 bpp file has no 256-color
	// palette block before the end of the file.
	ErrMissingPalette = errors.New("pcx: missing 256 color palette")
)

// Header carries the decoded geometry of a PCX file. BitsPerPixel is the
// effective depth of the whole pixel, 8 for single-plane indexed files and
// 24 for three-plane true color, regardless of the per-plane depth stored
// in the file.
type Header struct {
	Version      uint8
	BitsPerPixel int
	Planes       int
	BytesPerLine int
	Width        int
	Height       int
}

// RowStride returns the encoded length of one complete scanline covering
// all planes.
func (h *Header) RowStride() int {
	return h.Planes * h.BytesPerLine
}

// Image is a fully decoded PCX file. Pixels holds packed rows in display
// order, top row first: one index byte per pixel at 8 bpp, or an R, G, B
// triple per pixel at 24 bpp.
type Image struct {
	Header  Header
	Palette bitmap.Palette
	Pixels  []byte
}

// Sniff reports whether data starts with the PCX manufacturer byte.
func Sniff(data []byte) bool {
	return len(data) > 0 && data[0] == manufacturer
}

// Decode reads a complete PCX file from the stream.
func Decode(r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pcx: read: %w", err)
	}

	img := &Image{}

	err = img.parseHeader(raw)
	if err != nil {
		return nil, err
	}

	data := raw[headerSize:]
	if img.Header.BitsPerPixel == 8 {
		err = img.parsePalette(raw)
		if err != nil {
			return nil, err
		}

		// The palette block trails the pixel stream; keep it out of the
		// scanline decoder's reach.
		data = data[:len(data)-paletteBlock]
	}

	return img, img.decodeScanlines(data)
}

// ReadFile decodes the PCX file at path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return img, nil
}

func (img *Image) parseHeader(raw []byte) error {
	if len(raw) < headerSize {
		return fmt.Errorf("%w: %d byte file", ErrInvalidHeader, len(raw))
	}

	if raw[0] != manufacturer {
		return fmt.Errorf("%w: manufacturer byte %#02x", ErrInvalidHeader, raw[0])
	}

	h := &img.Header
	h.Version = raw[1]
	planeDepth := raw[3]

	xstart := int(int16(binary.LittleEndian.Uint16(raw[4:6])))
	ystart := int(int16(binary.LittleEndian.Uint16(raw[6:8])))
	xend := int(int16(binary.LittleEndian.Uint16(raw[8:10])))
	yend := int(int16(binary.LittleEndian.Uint16(raw[10:12])))

	h.Width = xend - xstart + 1
	h.Height = yend - ystart + 1

	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}

	h.Planes = int(raw[65])
	h.BytesPerLine = int(binary.LittleEndian.Uint16(raw[66:68]))

	switch {
	case h.Version == 5 && planeDepth == 8 && h.Planes == 3:
		h.BitsPerPixel = 24
	case planeDepth == 8 && h.Planes == 1:
		h.BitsPerPixel = 8
	default:
		return fmt.Errorf("%w: %d bits per plane with %d planes",
			ErrUnsupportedFormat, planeDepth, h.Planes)
	}

	if h.BytesPerLine < h.Width {
		return fmt.Errorf("%w: %d bytes per line for width %d",
			ErrInvalidHeader, h.BytesPerLine, h.Width)
	}

	return nil
}

func (img *Image) parsePalette(raw []byte) error {
	if len(raw) < headerSize+paletteBlock {
		return fmt.Errorf("%w: %d byte file", ErrMissingPalette, len(raw))
	}

	block := raw[len(raw)-paletteBlock:]
	if block[0] != paletteMarker {
		return fmt.Errorf("%w: marker byte %#02x", ErrMissingPalette, block[0])
	}

	img.Palette = make(bitmap.Palette, 256)
	for i := range img.Palette {
		entry := block[1+i*3:]
		img.Palette[i] = bitmap.RGB{R: entry[0], G: entry[1], B: entry[2]}
	}

	return nil
}

func (img *Image) decodeScanlines(data []byte) error {
	h := &img.Header
	stride := h.RowStride()

	bytesPerPixel := 1
	if h.BitsPerPixel == 24 {
		bytesPerPixel = 3
	}

	img.Pixels = make([]byte, h.Width*h.Height*bytesPerPixel)
	off := 0

	for y := 0; y < h.Height; y++ {
		row, consumed, err := codec.DecodeScanline(data[off:], stride)
		if err != nil {
			return fmt.Errorf("pcx: scanline %d: %w", y, err)
		}
		off += consumed

		dst := img.Pixels[y*h.Width*bytesPerPixel:]

		if h.BitsPerPixel == 8 {
			copy(dst[:h.Width], row)

			continue
		}

		// Planes lie one after another within the scanline, each
		// BytesPerLine wide: red, then green, then blue.
		for x := 0; x < h.Width; x++ {
			dst[x*3] = row[x]
			dst[x*3+1] = row[h.BytesPerLine+x]
			dst[x*3+2] = row[2*h.BytesPerLine+x]
		}
	}

	return nil
}

// RGBA renders the image into top-down RGBA bytes, resolving indexed pixels
// through the palette. Alpha is always 255.
func (img *Image) RGBA() ([]byte, error) {
	h := &img.Header
	out := make([]byte, h.Width*h.Height*4)

	for i := 0; i < h.Width*h.Height; i++ {
		var c bitmap.RGB

		if h.BitsPerPixel == 8 {
			idx := int(img.Pixels[i])
			if idx >= len(img.Palette) {
				return nil, fmt.Errorf("%w: color index %d with %d palette entries",
					bitmap.ErrOutOfBounds, idx, len(img.Palette))
			}
			c = img.Palette[idx]
		} else {
			c = bitmap.RGB{R: img.Pixels[i*3], G: img.Pixels[i*3+1], B: img.Pixels[i*3+2]}
		}

		out[i*4] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = 0xFF
	}

	return out, nil
}
