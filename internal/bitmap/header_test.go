package bitmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	hdr := NewFileHeader(1086, 1078)

	wire := hdr.Serialize()
	require.Len(t, wire, FileHeaderSize)
	require.Equal(t, []byte{'B', 'M'}, wire[:2])

	var decoded FileHeader
	require.NoError(t, decoded.Deserialize(bytes.NewReader(wire)))
	require.Equal(t, hdr, decoded)
}

func TestFileHeaderExactBytes(t *testing.T) {
	hdr := NewFileHeader(1000, 54)

	require.Equal(t, []byte{
		'B', 'M',
		0xE8, 0x03, 0x00, 0x00, // file size 1000
		0x00, 0x00, 0x00, 0x00, // reserved
		0x36, 0x00, 0x00, 0x00, // raster offset 54
	}, hdr.Serialize())
}

func TestFileHeaderRejectsBadSignature(t *testing.T) {
	wire := []byte{'P', 'K', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	var hdr FileHeader
	err := hdr.Deserialize(bytes.NewReader(wire))
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestFileHeaderTruncated(t *testing.T) {
	var hdr FileHeader
	require.Error(t, hdr.Deserialize(bytes.NewReader([]byte{'B', 'M', 0x01})))
}

func TestInfoHeaderRoundTrip(t *testing.T) {
	hdr := NewInfoHeader(7, 3, 8)
	hdr.XPelsPerMeter = 2835
	hdr.YPelsPerMeter = 2835

	wire := hdr.Serialize()
	require.Len(t, wire, 40)
	require.Equal(t, []byte{0x28, 0x00, 0x00, 0x00}, wire[:4])

	var decoded InfoHeader
	require.NoError(t, decoded.Deserialize(bytes.NewReader(wire)))
	require.Equal(t, hdr, decoded)
}

func TestInfoHeaderRoundTripV4(t *testing.T) {
	hdr := NewInfoHeader(640, 480, 16)
	hdr.Version = HeaderV4
	hdr.RedMask = 0x7C00
	hdr.GreenMask = 0x03E0
	hdr.BlueMask = 0x001F
	hdr.CSType = 0x73524742 // sRGB
	hdr.Endpoints.Red = CIEXYZ{X: 1, Y: 2, Z: 3}
	hdr.GammaBlue = 0x10000

	wire := hdr.Serialize()
	require.Len(t, wire, 108)

	var decoded InfoHeader
	require.NoError(t, decoded.Deserialize(bytes.NewReader(wire)))
	require.Equal(t, hdr, decoded)
}

func TestInfoHeaderRoundTripV5(t *testing.T) {
	hdr := NewInfoHeader(64, 64, 24)
	hdr.Version = HeaderV5
	hdr.Intent = 8 // LCS_GM_ABS_COLORIMETRIC
	hdr.ProfileData = 124
	hdr.ProfileSize = 512

	wire := hdr.Serialize()
	require.Len(t, wire, 124)

	var decoded InfoHeader
	require.NoError(t, decoded.Deserialize(bytes.NewReader(wire)))
	require.Equal(t, hdr, decoded)
}

func TestInfoHeaderCore(t *testing.T) {
	wire := []byte{
		0x0C, 0x00, 0x00, 0x00, // size 12
		0x40, 0x00, // width 64
		0x20, 0x00, // height 32
		0x01, 0x00, // planes
		0x08, 0x00, // 8 bpp
	}

	var hdr InfoHeader
	require.NoError(t, hdr.Deserialize(bytes.NewReader(wire)))

	require.Equal(t, HeaderCore, hdr.Version)
	require.Equal(t, 64, hdr.Width())
	require.Equal(t, 32, hdr.Height())
	require.Equal(t, 8, hdr.BitsPerPixel())
	require.Equal(t, BIRGB, hdr.Compression)
	require.Equal(t, 256, hdr.PaletteColors())

	require.Equal(t, wire, hdr.Serialize())
}

func TestInfoHeaderUnknownSize(t *testing.T) {
	wire := []byte{0x32, 0x00, 0x00, 0x00} // 50 matches no variant

	var hdr InfoHeader
	err := hdr.Deserialize(bytes.NewReader(wire))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestInfoHeaderTopDown(t *testing.T) {
	hdr := NewInfoHeader(8, 4, 8)
	hdr.ImageHeight = -4

	require.True(t, hdr.TopDown())
	require.Equal(t, 4, hdr.Height())
	require.Equal(t, 32, hdr.RasterSize())
}

func TestInfoHeaderPaletteColors(t *testing.T) {
	cases := []struct {
		name    string
		bpp     uint16
		clrUsed uint32
		want    int
	}{
		{"8 bpp full", 8, 0, 256},
		{"8 bpp reduced", 8, 16, 16},
		{"4 bpp full", 4, 0, 16},
		{"1 bpp", 1, 0, 2},
		{"16 bpp has no table", 16, 0, 0},
		{"24 bpp has no table", 24, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hdr := InfoHeader{Version: HeaderInfo, BitCount: tc.bpp, ClrUsed: tc.clrUsed}
			require.Equal(t, tc.want, hdr.PaletteColors())
		})
	}
}

func TestRowStride(t *testing.T) {
	cases := []struct {
		width, bpp, want int
	}{
		{7, 8, 8},
		{4, 8, 4},
		{1, 1, 4},
		{17, 1, 4},
		{33, 1, 8},
		{3, 4, 4},
		{100, 24, 300},
		{5, 24, 16},
		{3, 16, 8},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, RowStride(tc.width, tc.bpp),
			"width %d at %d bpp", tc.width, tc.bpp)
	}
}
