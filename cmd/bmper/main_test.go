package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bmper/internal/bitmap"
)

func grayPalette(n int) bitmap.Palette {
	p := make(bitmap.Palette, n)
	for i := range p {
		v := uint8(i)
		p[i] = bitmap.RGB{R: v, G: v, B: v}
	}

	return p
}

// writeIndexedBitmap writes a 6x5 8bpp bitmap whose pixel values count up
// row by row, under a full grayscale color table.
func writeIndexedBitmap(t *testing.T, path string) *bitmap.Image {
	t.Helper()

	raster, err := bitmap.NewRaster(6, 5, 8)
	require.NoError(t, err)

	packed := make([]byte, 6*5)
	for i := range packed {
		packed[i] = uint8(i)
	}
	require.NoError(t, raster.SetPackedRows(packed))

	img := bitmap.New(raster, grayPalette(256))
	require.NoError(t, img.WriteFile(path))

	return img
}

// writeTrueColorBitmap writes a 24 bpp bitmap filled with one color.
func writeTrueColorBitmap(t *testing.T, path string, width, height int, fill bitmap.RGB) *bitmap.Image {
	t.Helper()

	raster, err := bitmap.NewRaster(width, height, 24)
	require.NoError(t, err)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := bitmap.PackRGB888(uint32(fill.R), uint32(fill.G), uint32(fill.B))
			require.NoError(t, raster.SetPixel(x, y, v))
		}
	}

	img := bitmap.New(raster, nil)
	require.NoError(t, img.WriteFile(path))

	return img
}

// writeIndexedPCX writes a 4x2 8bpp PCX file with a grayscale palette. The
// pixel rows are 0,1,2,3 and four times 5, top row first.
func writeIndexedPCX(t *testing.T, path string) {
	t.Helper()

	hdr := make([]byte, 128)
	hdr[0] = 0x0A // manufacturer
	hdr[1] = 5    // version
	hdr[2] = 1    // RLE encoding
	hdr[3] = 8    // bits per plane
	binary.LittleEndian.PutUint16(hdr[8:10], 3)  // xend
	binary.LittleEndian.PutUint16(hdr[10:12], 1) // yend
	hdr[65] = 1                                  // planes
	binary.LittleEndian.PutUint16(hdr[66:68], 4) // bytes per line

	file := append(hdr,
		0x00, 0x01, 0x02, 0x03, // literal top row
		0xC4, 0x05, // run of four
	)

	palette := make([]byte, 1+256*3)
	palette[0] = 0x0C
	for i := 0; i < 256; i++ {
		palette[1+i*3] = uint8(i)
		palette[1+i*3+1] = uint8(i)
		palette[1+i*3+2] = uint8(i)
	}
	file = append(file, palette...)

	require.NoError(t, os.WriteFile(path, file, 0o644))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		source   string
		suffix   string
		ext      string
		want     string
		wantErr  bool
	}{
		{name: "explicit wins", explicit: "out.bmp", source: "in.bmp", suffix: "_border", ext: ".bmp", want: "out.bmp"},
		{name: "suffix derived", source: "pic.bmp", suffix: "_border", ext: ".bmp", want: "pic_border.bmp"},
		{name: "extension swapped", source: "pic.pcx", suffix: "", ext: ".bmp", want: "pic.bmp"},
		{name: "no source extension", source: "pic", suffix: "_rle8", ext: "", want: "pic_rle8"},
		{name: "derived would overwrite", source: "pic.bmp", suffix: "", ext: ".bmp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath(tt.explicit, tt.source, tt.suffix, tt.ext)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadImageBitmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.bmp")
	want := writeIndexedBitmap(t, path)

	img, err := readImage(path)
	require.NoError(t, err)
	require.Equal(t, want.Raster.Data, img.Raster.Data)
	require.Equal(t, want.Palette, img.Palette)
}

func TestReadImagePCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pcx")
	writeIndexedPCX(t, path)

	img, err := readImage(path)
	require.NoError(t, err)

	require.Equal(t, 4, img.Raster.Width)
	require.Equal(t, 2, img.Raster.Height)
	require.Len(t, img.Palette, 256)

	// PCX rows arrive top-down and are stored bottom-up.
	require.Equal(t, []byte{5, 5, 5, 5}, img.Raster.Data[:4])
	require.Equal(t, []byte{0, 1, 2, 3}, img.Raster.Data[img.Raster.Stride:img.Raster.Stride+4])
}

func TestReadImageUnrecognized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := readImage(path)
	require.ErrorIs(t, err, bitmap.ErrInvalidSignature)
}

func TestMetaBitmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.bmp")
	writeIndexedBitmap(t, path)

	var buf bytes.Buffer
	cmd := &MetaCmd{File: path}
	require.NoError(t, cmd.run(&buf))

	out := buf.String()
	require.Contains(t, out, "BITMAPFILEHEADER")
	require.Contains(t, out, "BITMAPINFOHEADER")
	require.Contains(t, out, "6 x 5 px, bottom-up")
	require.Contains(t, out, "8 bpp")
	require.Contains(t, out, "BI_RGB")
	require.Contains(t, out, "256 entries")
}

func TestMetaBitmapV5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v5.bmp")

	img := writeIndexedBitmap(t, path)
	img.InfoHeader.Version = bitmap.HeaderV5
	img.InfoHeader.RedMask = 0x00FF0000
	img.InfoHeader.ProfileSize = 16
	require.NoError(t, img.WriteFile(path))

	var buf bytes.Buffer
	cmd := &MetaCmd{File: path}
	require.NoError(t, cmd.run(&buf))

	out := buf.String()
	require.Contains(t, out, "BITMAPV5HEADER")
	require.Contains(t, out, "R=00ff0000")
	require.Contains(t, out, "16 bytes")
}

func TestMetaPCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pcx")
	writeIndexedPCX(t, path)

	var buf bytes.Buffer
	cmd := &MetaCmd{File: path}
	require.NoError(t, cmd.run(&buf))

	out := buf.String()
	require.Contains(t, out, "PCX")
	require.Contains(t, out, "4 x 2 px")
	require.Contains(t, out, "8 bpp, 1 plane(s)")
	require.Contains(t, out, "256 entries")
}

func TestMetaMissingFile(t *testing.T) {
	cmd := &MetaCmd{File: filepath.Join(t.TempDir(), "nope.bmp")}
	require.Error(t, cmd.run(&bytes.Buffer{}))
}
