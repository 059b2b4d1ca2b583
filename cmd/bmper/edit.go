package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"bmper/internal/bitmap"
	"bmper/internal/draw"
	"bmper/internal/pal"
	"bmper/internal/pcx"
	"bmper/internal/quant"
)

// BorderCmd draws a randomized border into a bitmap.
type BorderCmd struct {
	File   string `arg:"" help:"Bitmap to read"`
	Width  int    `help:"Border width in pixels" short:"w" required:""`
	Seed   *int64 `help:"Seed for the border colors (default: current time)"`
	Output string `help:"Destination file (default: FILE with a _border suffix)" short:"o" type:"path"`
}

func (c *BorderCmd) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("border width must be at least 1, got %d", c.Width)
	}

	return nil
}

func (c *BorderCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "_border", filepath.Ext(c.File))
	if err != nil {
		return err
	}

	img, err := bitmap.ReadFile(c.File)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	err = draw.Border(img.Raster, c.Width, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	if err := img.WriteFile(out); err != nil {
		return err
	}

	fmt.Println("wrote", out)

	return nil
}

// LogoCmd copies a 24 bpp logo bitmap into the bottom right corner of a
// 24 bpp destination bitmap.
type LogoCmd struct {
	File   string `arg:"" help:"Bitmap to read"`
	Logo   string `help:"24 bpp bitmap to overlay" required:""`
	Margin int    `help:"Distance from the picture edges in pixels" default:"15"`
	Output string `help:"Destination file (default: FILE with a _logo suffix)" short:"o" type:"path"`
}

func (c *LogoCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "_logo", filepath.Ext(c.File))
	if err != nil {
		return err
	}

	img, err := bitmap.ReadFile(c.File)
	if err != nil {
		return err
	}

	logo, err := bitmap.ReadFile(c.Logo)
	if err != nil {
		return err
	}

	err = draw.Logo(img.Raster, logo.Raster, c.Margin)
	if err != nil {
		return err
	}

	if err := img.WriteFile(out); err != nil {
		return err
	}

	fmt.Println("wrote", out)

	return nil
}

// ConvertCmd rewrites a PCX file as a bitmap, quantizing the color table of
// indexed sources.
type ConvertCmd struct {
	File   string `arg:"" help:"PCX file to convert"`
	Colors int    `help:"Color table size for indexed sources" default:"16"`
	Output string `help:"Destination file (default: FILE with a .bmp extension)" short:"o" type:"path"`
}

func (c *ConvertCmd) Validate() error {
	if c.Colors < 1 || c.Colors > 256 {
		return fmt.Errorf("colors must be between 1 and 256, got %d", c.Colors)
	}

	return nil
}

func (c *ConvertCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "", ".bmp")
	if err != nil {
		return err
	}

	img, err := pcx.ReadFile(c.File)
	if err != nil {
		return err
	}

	converted, err := pcx.ToBitmap(img, c.Colors)
	if err != nil {
		return err
	}

	if err := converted.WriteFile(out); err != nil {
		return err
	}

	fmt.Println("wrote", out)

	return nil
}

// CompressCmd rewrites a bitmap with its raster RLE8 compressed.
type CompressCmd struct {
	File   string `arg:"" help:"8 bpp bitmap to compress"`
	Output string `help:"Destination file (default: FILE with a _rle8 suffix)" short:"o" type:"path"`
}

func (c *CompressCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "_rle8", filepath.Ext(c.File))
	if err != nil {
		return err
	}

	img, err := bitmap.ReadFile(c.File)
	if err != nil {
		return err
	}

	if img.InfoHeader.Compression == bitmap.BIRLE8 {
		return fmt.Errorf("%s is already RLE8 compressed", c.File)
	}

	if img.InfoHeader.BitsPerPixel() != 8 {
		return fmt.Errorf("RLE8 applies to 8 bpp bitmaps, %s has %d bpp",
			c.File, img.InfoHeader.BitsPerPixel())
	}

	// A core header has no room for a compression field.
	if img.InfoHeader.Version == bitmap.HeaderCore {
		img.InfoHeader.Version = bitmap.HeaderInfo
	}

	img.InfoHeader.Compression = bitmap.BIRLE8

	if err := img.WriteFile(out); err != nil {
		return err
	}

	fmt.Println("wrote", out)

	return nil
}

// DecompressCmd rewrites an RLE8 bitmap with a flat raster.
type DecompressCmd struct {
	File   string `arg:"" help:"RLE8 bitmap to expand"`
	Output string `help:"Destination file (default: FILE with a _raw suffix)" short:"o" type:"path"`
}

func (c *DecompressCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "_raw", filepath.Ext(c.File))
	if err != nil {
		return err
	}

	img, err := bitmap.ReadFile(c.File)
	if err != nil {
		return err
	}

	if img.InfoHeader.Compression != bitmap.BIRLE8 {
		return fmt.Errorf("%s is not RLE8 compressed (%s)", c.File, img.InfoHeader.Compression)
	}

	img.InfoHeader.Compression = bitmap.BIRGB

	if err := img.WriteFile(out); err != nil {
		return err
	}

	fmt.Println("wrote", out)

	return nil
}

// PaletteCmd writes the color table of a BMP or PCX file as a RIFF palette,
// optionally reduced first.
type PaletteCmd struct {
	File   string `arg:"" help:"BMP or PCX file to read"`
	Colors int    `help:"Reduce the color table to this many entries first" default:"0"`
	Output string `help:"Destination file (default: FILE with a .pal extension)" short:"o" type:"path"`
}

func (c *PaletteCmd) Validate() error {
	if c.Colors < 0 || c.Colors > 256 {
		return fmt.Errorf("colors must be between 1 and 256, got %d", c.Colors)
	}

	return nil
}

func (c *PaletteCmd) Run() error {
	out, err := outputPath(c.Output, c.File, "", ".pal")
	if err != nil {
		return err
	}

	img, err := readImage(c.File)
	if err != nil {
		return err
	}

	palette := img.Palette
	if len(palette) == 0 {
		return fmt.Errorf("%s has no color table at %d bpp", c.File, img.InfoHeader.BitsPerPixel())
	}

	if c.Colors > 0 {
		freq, err := quant.CountFrequencies(img.Raster, len(palette))
		if err != nil {
			return err
		}

		palette, _, err = quant.Reduce(palette, freq, c.Colors)
		if err != nil {
			return err
		}
	}

	if err := pal.WriteFile(out, palette); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d colors)\n", out, len(palette))

	return nil
}
