package pcx

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bmper/internal/bitmap"
	"bmper/internal/codec"
)

func pcxHeader(version, planeDepth, planes uint8, width, height, bytesPerLine int) []byte {
	hdr := make([]byte, headerSize)
	hdr[0] = 0x0A    // manufacturer
	hdr[1] = version // version
	hdr[2] = 1       // RLE encoding
	hdr[3] = planeDepth
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(width-1))   // xend, xstart 0
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(height-1)) // yend, ystart 0
	hdr[65] = planes
	binary.LittleEndian.PutUint16(hdr[66:68], uint16(bytesPerLine))

	return hdr
}

func grayPaletteBlock() []byte {
	block := make([]byte, paletteBlock)
	block[0] = paletteMarker
	for i := 0; i < 256; i++ {
		block[1+i*3] = uint8(i)
		block[1+i*3+1] = uint8(i)
		block[1+i*3+2] = uint8(i)
	}

	return block
}

func TestDecodeIndexed(t *testing.T) {
	file := pcxHeader(5, 8, 1, 4, 2, 4)
	file = append(file,
		0x00, 0x01, 0x02, 0x03, // row 0: four literals
		0xC4, 0x05, // row 1: run of four 0x05
	)
	file = append(file, grayPaletteBlock()...)

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)

	require.Equal(t, Header{
		Version:      5,
		BitsPerPixel: 8,
		Planes:       1,
		BytesPerLine: 4,
		Width:        4,
		Height:       2,
	}, img.Header)

	require.Equal(t, []byte{0, 1, 2, 3, 5, 5, 5, 5}, img.Pixels)

	require.Len(t, img.Palette, 256)
	require.Equal(t, bitmap.RGB{R: 5, G: 5, B: 5}, img.Palette[5])
	require.Equal(t, bitmap.RGB{R: 200, G: 200, B: 200}, img.Palette[200])
}

func TestDecodeIndexedDropsLinePadding(t *testing.T) {
	// Three pixels per row but four bytes per line; the fourth byte of each
	// scanline is padding and must not reach the pixel buffer.
	file := pcxHeader(5, 8, 1, 3, 1, 4)
	file = append(file, 0xC4, 0x11) // run of four 0x11
	file = append(file, grayPaletteBlock()...)

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, []byte{0x11, 0x11, 0x11}, img.Pixels)
}

func TestDecodeTrueColor(t *testing.T) {
	file := pcxHeader(5, 8, 3, 2, 1, 2)
	file = append(file,
		10, 20, // red plane
		30, 40, // green plane
		50, 60, // blue plane
	)

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)

	require.Equal(t, 24, img.Header.BitsPerPixel)
	require.Equal(t, 6, img.Header.RowStride())
	require.Empty(t, img.Palette)
	require.Equal(t, []byte{10, 30, 50, 20, 40, 60}, img.Pixels)
}

func TestDecodeTrueColorPlanePadding(t *testing.T) {
	// Each plane is three bytes wide for a two pixel row, so the plane
	// offsets within the scanline follow BytesPerLine, not the width.
	file := pcxHeader(5, 8, 3, 2, 1, 3)
	file = append(file,
		1, 2, 0, // red plane with padding
		3, 4, 0, // green plane
		5, 6, 0, // blue plane
	)

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 3, 5, 2, 4, 6}, img.Pixels)
}

func TestDecodeRunCrossesPlanes(t *testing.T) {
	// One run may span all three planes of a scanline.
	file := pcxHeader(5, 8, 3, 2, 1, 2)
	file = append(file, 0xC6, 0x7F) // run of six 0x7F

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, []byte{0x7F, 0x7F, 0x7F, 0x7F, 0x7F, 0x7F}, img.Pixels)
}

func TestDecodeErrors(t *testing.T) {
	indexed := func() []byte {
		file := pcxHeader(5, 8, 1, 4, 2, 4)
		file = append(file, 0x00, 0x01, 0x02, 0x03, 0xC4, 0x05)

		return append(file, grayPaletteBlock()...)
	}

	cases := []struct {
		name string
		file []byte
		want error
	}{
		{"truncated header", indexed()[:50], ErrInvalidHeader},
		{"bad manufacturer", append([]byte{0x00}, indexed()[1:]...), ErrInvalidHeader},
		{
			"unsupported plane layout",
			append(pcxHeader(5, 1, 4, 4, 2, 1), grayPaletteBlock()...),
			ErrUnsupportedFormat,
		},
		{
			"true color needs version 5",
			pcxHeader(3, 8, 3, 2, 1, 2),
			ErrUnsupportedFormat,
		},
		{
			"line shorter than width",
			append(pcxHeader(5, 8, 1, 4, 1, 2), grayPaletteBlock()...),
			ErrInvalidHeader,
		},
		{
			"missing palette block",
			append(pcxHeader(5, 8, 1, 4, 1, 4), 0xC4, 0x05),
			ErrMissingPalette,
		},
		{
			"bad palette marker",
			func() []byte {
				file := indexed()
				file[len(file)-paletteBlock] = 0x00

				return file
			}(),
			ErrMissingPalette,
		},
		{
			"truncated scanlines",
			func() []byte {
				file := pcxHeader(5, 8, 1, 4, 2, 4)
				file = append(file, 0x00, 0x01, 0x02, 0x03) // row 1 missing

				return append(file, grayPaletteBlock()...)
			}(),
			codec.ErrTruncatedStream,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tc.file))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRGBAIndexed(t *testing.T) {
	file := pcxHeader(5, 8, 1, 2, 1, 2)
	file = append(file, 0x01, 0x03)
	file = append(file, grayPaletteBlock()...)

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)

	rgba, err := img.RGBA()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1, 1, 255, 3, 3, 3, 255}, rgba)
}

func TestRGBATrueColor(t *testing.T) {
	img := &Image{
		Header: Header{BitsPerPixel: 24, Planes: 3, Width: 1, Height: 1},
		Pixels: []byte{10, 20, 30},
	}

	rgba, err := img.RGBA()
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30, 255}, rgba)
}

func TestRGBAIndexBeyondPalette(t *testing.T) {
	img := &Image{
		Header:  Header{BitsPerPixel: 8, Planes: 1, Width: 1, Height: 1},
		Palette: bitmap.Palette{{}, {}},
		Pixels:  []byte{5},
	}

	_, err := img.RGBA()
	require.ErrorIs(t, err, bitmap.ErrOutOfBounds)
}

func TestReadFile(t *testing.T) {
	file := pcxHeader(5, 8, 1, 2, 1, 2)
	file = append(file, 0xC2, 0x09)
	file = append(file, grayPaletteBlock()...)

	path := filepath.Join(t.TempDir(), "sample.pcx")
	require.NoError(t, os.WriteFile(path, file, 0o644))

	img, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9}, img.Pixels)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.pcx"))
	require.Error(t, err)
}

func TestSniff(t *testing.T) {
	require.True(t, Sniff([]byte{0x0A, 0x05}))
	require.False(t, Sniff([]byte{'B', 'M'}))
	require.False(t, Sniff(nil))
}
