package bitmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderVersion identifies an info header variant by its Size member, the
// first dword of the header.
type HeaderVersion uint32

const (
	// HeaderCore is the OS/2 BITMAPCOREHEADER: 16-bit dimensions, no
	// compression field, RGBTRIPLE color table.
	HeaderCore HeaderVersion = 12

	// HeaderInfo is the BITMAPINFOHEADER.
	HeaderInfo HeaderVersion = 40

	// HeaderV4 is the BITMAPV4HEADER: adds channel masks, a color space
	// type, endpoints and gamma values.
	HeaderV4 HeaderVersion = 108

	// HeaderV5 is the BITMAPV5HEADER: adds rendering intent and an embedded
	// ICC profile reference.
	HeaderV5 HeaderVersion = 124
)

func (v HeaderVersion) String() string {
	switch v {
	case HeaderCore:
		return "BITMAPCOREHEADER"
	case HeaderInfo:
		return "BITMAPINFOHEADER"
	case HeaderV4:
		return "BITMAPV4HEADER"
	case HeaderV5:
		return "BITMAPV5HEADER"
	}

	return fmt.Sprintf("UNKNOWN(%d)", uint32(v))
}

// CIEXYZ is one color space endpoint, each coordinate an FXPT2DOT30 fixed
// point value.
type CIEXYZ struct {
	X, Y, Z uint32
}

// CIEXYZTriple carries the red, green and blue endpoints of a V4/V5 header.
type CIEXYZTriple struct {
	Red, Green, Blue CIEXYZ
}

// InfoHeader is the info header of a bitmap file. Version selects the on-disk
// variant; fields beyond the variant's size are kept zero and are neither
// read nor written. A BITMAPCOREHEADER is widened into the same struct on
// read, with its 16-bit dimensions sign-extended and Compression left BI_RGB.
type InfoHeader struct {
	Version HeaderVersion

	ImageWidth  int32
	ImageHeight int32
	Planes      uint16
	BitCount    uint16

	// HeaderInfo and newer.
	Compression   Compression
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32

	// HeaderV4 and newer.
	RedMask    uint32
	GreenMask  uint32
	BlueMask   uint32
	AlphaMask  uint32
	CSType     uint32
	Endpoints  CIEXYZTriple
	GammaRed   uint32
	GammaGreen uint32
	GammaBlue  uint32

	// HeaderV5 only.
	Intent      uint32
	ProfileData uint32
	ProfileSize uint32
	Reserved    uint32
}

// NewInfoHeader returns a BITMAPINFOHEADER for an uncompressed raster of the
// given geometry.
func NewInfoHeader(width, height, bitsPerPixel int) InfoHeader {
	hdr := InfoHeader{
		Version:     HeaderInfo,
		ImageWidth:  int32(width),
		ImageHeight: int32(height),
		Planes:      1,
		BitCount:    uint16(bitsPerPixel),
		Compression: BIRGB,
	}
	hdr.SizeImage = uint32(hdr.RasterSize())

	return hdr
}

// Width returns the image width in pixels.
func (h *InfoHeader) Width() int {
	return int(h.ImageWidth)
}

// Height returns the image height in pixels, always positive. A negative
// stored height marks a top-down raster; see TopDown.
func (h *InfoHeader) Height() int {
	if h.ImageHeight < 0 {
		return int(-h.ImageHeight)
	}

	return int(h.ImageHeight)
}

// TopDown reports whether the raster rows are stored top row first. Rows of a
// bitmap are normally stored bottom-up.
func (h *InfoHeader) TopDown() bool {
	return h.ImageHeight < 0
}

// BitsPerPixel returns the color depth of the raster.
func (h *InfoHeader) BitsPerPixel() int {
	return int(h.BitCount)
}

// Stride returns the byte length of one stored raster row, rows being padded
// to a 32-bit boundary.
func (h *InfoHeader) Stride() int {
	return RowStride(h.Width(), h.BitsPerPixel())
}

// RasterSize returns the byte length of the uncompressed raster.
func (h *InfoHeader) RasterSize() int {
	return h.Stride() * h.Height()
}

// PaletteColors returns the number of color table entries that follow the
// header. Depths above 8 bpp carry no color table.
func (h *InfoHeader) PaletteColors() int {
	if h.BitCount == 0 || h.BitCount > 8 {
		return 0
	}

	if h.Version != HeaderCore && h.ClrUsed > 0 {
		return int(h.ClrUsed)
	}

	return 1 << h.BitCount
}

func (h *InfoHeader) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, uint32(h.Version))

	if h.Version == HeaderCore {
		_ = binary.Write(buf, binary.LittleEndian, uint16(h.ImageWidth))
		_ = binary.Write(buf, binary.LittleEndian, uint16(h.ImageHeight))
		_ = binary.Write(buf, binary.LittleEndian, h.Planes)
		_ = binary.Write(buf, binary.LittleEndian, h.BitCount)

		return buf.Bytes()
	}

	_ = binary.Write(buf, binary.LittleEndian, h.ImageWidth)
	_ = binary.Write(buf, binary.LittleEndian, h.ImageHeight)
	_ = binary.Write(buf, binary.LittleEndian, h.Planes)
	_ = binary.Write(buf, binary.LittleEndian, h.BitCount)
	_ = binary.Write(buf, binary.LittleEndian, uint32(h.Compression))
	_ = binary.Write(buf, binary.LittleEndian, h.SizeImage)
	_ = binary.Write(buf, binary.LittleEndian, h.XPelsPerMeter)
	_ = binary.Write(buf, binary.LittleEndian, h.YPelsPerMeter)
	_ = binary.Write(buf, binary.LittleEndian, h.ClrUsed)
	_ = binary.Write(buf, binary.LittleEndian, h.ClrImportant)

	if h.Version >= HeaderV4 {
		_ = binary.Write(buf, binary.LittleEndian, h.RedMask)
		_ = binary.Write(buf, binary.LittleEndian, h.GreenMask)
		_ = binary.Write(buf, binary.LittleEndian, h.BlueMask)
		_ = binary.Write(buf, binary.LittleEndian, h.AlphaMask)
		_ = binary.Write(buf, binary.LittleEndian, h.CSType)
		_ = binary.Write(buf, binary.LittleEndian, h.Endpoints)
		_ = binary.Write(buf, binary.LittleEndian, h.GammaRed)
		_ = binary.Write(buf, binary.LittleEndian, h.GammaGreen)
		_ = binary.Write(buf, binary.LittleEndian, h.GammaBlue)
	}

	if h.Version == HeaderV5 {
		_ = binary.Write(buf, binary.LittleEndian, h.Intent)
		_ = binary.Write(buf, binary.LittleEndian, h.ProfileData)
		_ = binary.Write(buf, binary.LittleEndian, h.ProfileSize)
		_ = binary.Write(buf, binary.LittleEndian, h.Reserved)
	}

	return buf.Bytes()
}

func (h *InfoHeader) Deserialize(wire io.Reader) error {
	var size uint32

	err := binary.Read(wire, binary.LittleEndian, &size)
	if err != nil {
		return err
	}

	h.Version = HeaderVersion(size)

	switch h.Version {
	case HeaderCore:
		return h.deserializeCore(wire)
	case HeaderInfo, HeaderV4, HeaderV5:
		return h.deserializeInfo(wire)
	}

	return fmt.Errorf("%w: info header size %d", ErrInvalidHeader, size)
}

func (h *InfoHeader) deserializeCore(wire io.Reader) error {
	var width, height uint16

	err := binary.Read(wire, binary.LittleEndian, &width)
	if err != nil {
		return err
	}

	err = binary.Read(wire, binary.LittleEndian, &height)
	if err != nil {
		return err
	}

	h.ImageWidth = int32(width)
	h.ImageHeight = int32(height)

	err = binary.Read(wire, binary.LittleEndian, &h.Planes)
	if err != nil {
		return err
	}

	return binary.Read(wire, binary.LittleEndian, &h.BitCount)
}

func (h *InfoHeader) deserializeInfo(wire io.Reader) error {
	fields := []any{
		&h.ImageWidth,
		&h.ImageHeight,
		&h.Planes,
		&h.BitCount,
		&h.Compression,
		&h.SizeImage,
		&h.XPelsPerMeter,
		&h.YPelsPerMeter,
		&h.ClrUsed,
		&h.ClrImportant,
	}

	if h.Version >= HeaderV4 {
		fields = append(fields,
			&h.RedMask,
			&h.GreenMask,
			&h.BlueMask,
			&h.AlphaMask,
			&h.CSType,
			&h.Endpoints,
			&h.GammaRed,
			&h.GammaGreen,
			&h.GammaBlue,
		)
	}

	if h.Version == HeaderV5 {
		fields = append(fields,
			&h.Intent,
			&h.ProfileData,
			&h.ProfileSize,
			&h.Reserved,
		)
	}

	for _, field := range fields {
		err := binary.Read(wire, binary.LittleEndian, field)
		if err != nil {
			return err
		}
	}

	return nil
}
