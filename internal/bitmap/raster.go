package bitmap

import "fmt"

// Raster is an uncompressed pixel raster. Rows live in storage order: row 0
// is the first stored row, which for a bottom-up bitmap is the bottom row of
// the displayed image. Every row occupies Stride bytes, pixel data first and
// alignment padding after it.
type Raster struct {
	Width        int
	Height       int
	BitsPerPixel int
	Stride       int
	Data         []byte
}

// NewRaster allocates a zeroed raster for the given geometry.
func NewRaster(width, height, bitsPerPixel int) (*Raster, error) {
	if !SupportedDepth(bitsPerPixel) {
		return nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, bitsPerPixel)
	}

	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: raster %dx%d", ErrInvalidHeader, width, height)
	}

	stride := RowStride(width, bitsPerPixel)

	return &Raster{
		Width:        width,
		Height:       height,
		BitsPerPixel: bitsPerPixel,
		Stride:       stride,
		Data:         make([]byte, stride*height),
	}, nil
}

// SupportedDepth reports whether the pixel accessor implements the depth.
func SupportedDepth(bitsPerPixel int) bool {
	switch bitsPerPixel {
	case 1, 4, 8, 16, 24:
		return true
	}

	return false
}

// Pixel returns the pixel value at storage coordinates (x, y). Depths of 8
// and below return the color index, 16 bpp returns the X1R5G5B5 sample, and
// 24 bpp returns the color as R<<16 | G<<8 | B.
func (r *Raster) Pixel(x, y int) (uint32, error) {
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return 0, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, r.Width, r.Height)
	}

	row := y * r.Stride

	switch r.BitsPerPixel {
	case 1, 4, 8:
		perByte := 8 / r.BitsPerPixel
		shift := uint((perByte - 1 - x%perByte) * r.BitsPerPixel)
		mask := byte(1<<r.BitsPerPixel - 1)

		return uint32(r.Data[row+x/perByte] >> shift & mask), nil
	case 16:
		off := row + x*2

		return uint32(r.Data[off]) | uint32(r.Data[off+1])<<8, nil
	case 24:
		off := row + x*3

		return uint32(r.Data[off]) | uint32(r.Data[off+1])<<8 | uint32(r.Data[off+2])<<16, nil
	}

	return 0, fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, r.BitsPerPixel)
}

// SetPixel stores a pixel value at storage coordinates (x, y). The value is
// truncated to the raster depth; neighboring pixels that share the byte at
// sub-byte depths keep their bits.
func (r *Raster) SetPixel(x, y int, value uint32) error {
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, r.Width, r.Height)
	}

	row := y * r.Stride

	switch r.BitsPerPixel {
	case 1, 4, 8:
		perByte := 8 / r.BitsPerPixel
		shift := uint((perByte - 1 - x%perByte) * r.BitsPerPixel)
		mask := byte(1<<r.BitsPerPixel - 1)
		off := row + x/perByte
		r.Data[off] = r.Data[off]&^(mask<<shift) | (byte(value)&mask)<<shift
	case 16:
		off := row + x*2
		r.Data[off] = byte(value)
		r.Data[off+1] = byte(value >> 8)
	case 24:
		off := row + x*3
		r.Data[off] = byte(value)
		r.Data[off+1] = byte(value >> 8)
		r.Data[off+2] = byte(value >> 16)
	default:
		return fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, r.BitsPerPixel)
	}

	return nil
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := *r
	out.Data = make([]byte, len(r.Data))
	copy(out.Data, r.Data)

	return &out
}

// FlipRows reverses the storage order of the rows in place, converting
// between top-down and bottom-up layouts.
func (r *Raster) FlipRows() {
	if r.Stride == 0 {
		return
	}

	tmp := make([]byte, r.Stride)
	top := 0
	bottom := (r.Height - 1) * r.Stride

	for top < bottom {
		copy(tmp, r.Data[top:top+r.Stride])
		copy(r.Data[top:top+r.Stride], r.Data[bottom:bottom+r.Stride])
		copy(r.Data[bottom:bottom+r.Stride], tmp)

		top += r.Stride
		bottom -= r.Stride
	}
}

// PackedRows returns the rows of an 8 bpp raster concatenated without the
// stride padding, in storage order. This is the layout the RLE8 codec works
// on.
func (r *Raster) PackedRows() ([]byte, error) {
	if r.BitsPerPixel != 8 {
		return nil, fmt.Errorf("%w: packed rows need 8 bpp, got %d", ErrUnsupportedDepth, r.BitsPerPixel)
	}

	out := make([]byte, r.Width*r.Height)
	for y := 0; y < r.Height; y++ {
		copy(out[y*r.Width:(y+1)*r.Width], r.Data[y*r.Stride:])
	}

	return out, nil
}

// SetPackedRows fills an 8 bpp raster from rows concatenated without padding.
// The pad bytes of every row are zeroed.
func (r *Raster) SetPackedRows(packed []byte) error {
	if r.BitsPerPixel != 8 {
		return fmt.Errorf("%w: packed rows need 8 bpp, got %d", ErrUnsupportedDepth, r.BitsPerPixel)
	}

	if len(packed) != r.Width*r.Height {
		return fmt.Errorf("%w: packed raster is %d bytes, want %d", ErrInvalidHeader, len(packed), r.Width*r.Height)
	}

	for y := 0; y < r.Height; y++ {
		row := r.Data[y*r.Stride : (y+1)*r.Stride]
		n := copy(row, packed[y*r.Width:(y+1)*r.Width])

		for i := n; i < len(row); i++ {
			row[i] = 0
		}
	}

	return nil
}
