package pcx

import (
	"bmper/internal/bitmap"
	"bmper/internal/quant"
)

// Bitmap converts the decoded image into a bitmap image with its color table
// intact. Rows move from the PCX top-down order into bottom-up bitmap
// storage; true color planes are interleaved to BGR. No quantization is
// applied.
func (img *Image) Bitmap() (*bitmap.Image, error) {
	h := &img.Header

	raster, err := bitmap.NewRaster(h.Width, h.Height, h.BitsPerPixel)
	if err != nil {
		return nil, err
	}

	if h.BitsPerPixel == 24 {
		interleaveTrueColor(img, raster)

		return bitmap.New(raster, nil), nil
	}

	for y := 0; y < h.Height; y++ {
		dst := raster.Data[(h.Height-1-y)*raster.Stride:]
		copy(dst[:h.Width], img.Pixels[y*h.Width:])
	}

	return bitmap.New(raster, img.Palette.Clone()), nil
}

// ToBitmap converts a decoded PCX image into a bitmap image. Indexed sources
// are quantized down to a targetColors entry color table and their raster
// remapped through the quantizer's index map. True color sources convert
// directly and ignore targetColors.
func ToBitmap(img *Image, targetColors int) (*bitmap.Image, error) {
	out, err := img.Bitmap()
	if err != nil {
		return nil, err
	}

	if img.Header.BitsPerPixel == 24 {
		return out, nil
	}

	freq, err := quant.CountFrequencies(out.Raster, len(out.Palette))
	if err != nil {
		return nil, err
	}

	reduced, indexMap, err := quant.Reduce(out.Palette, freq, targetColors)
	if err != nil {
		return nil, err
	}

	for y := 0; y < out.Raster.Height; y++ {
		row := out.Raster.Data[y*out.Raster.Stride:]
		for x := 0; x < out.Raster.Width; x++ {
			row[x] = indexMap[row[x]]
		}
	}

	out.Palette = reduced
	out.InfoHeader.ClrUsed = uint32(targetColors)
	out.InfoHeader.ClrImportant = uint32(targetColors)

	return out, nil
}

func interleaveTrueColor(img *Image, raster *bitmap.Raster) {
	h := &img.Header

	for y := 0; y < h.Height; y++ {
		src := img.Pixels[y*h.Width*3:]
		dst := raster.Data[(h.Height-1-y)*raster.Stride:]

		for x := 0; x < h.Width; x++ {
			dst[x*3] = src[x*3+2]
			dst[x*3+1] = src[x*3+1]
			dst[x*3+2] = src[x*3]
		}
	}
}
