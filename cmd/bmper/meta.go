package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"bmper/internal/bitmap"
	"bmper/internal/pcx"
)

// MetaCmd prints the file header and whichever info header variant a bitmap
// carries, or the header of a PCX file.
type MetaCmd struct {
	File string `arg:"" help:"Image file to inspect"`
}

func (c *MetaCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *MetaCmd) run(w io.Writer) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", c.File, humanize.Bytes(uint64(len(data))))

	if pcx.Sniff(data) {
		return printPCXMeta(w, data)
	}

	return printBitmapMeta(w, data)
}

func printBitmapMeta(w io.Writer, data []byte) error {
	r := bytes.NewReader(data)

	var fh bitmap.FileHeader
	if err := fh.Deserialize(r); err != nil {
		return fmt.Errorf("file header: %w", err)
	}

	var ih bitmap.InfoHeader
	if err := ih.Deserialize(r); err != nil {
		return fmt.Errorf("info header: %w", err)
	}

	fmt.Fprintln(w, "BITMAPFILEHEADER")
	printField(w, "file size", "%d (%s)", fh.FileSize, humanize.Bytes(uint64(fh.FileSize)))
	printField(w, "raster offset", "%d", fh.OffsetBits)

	fmt.Fprintln(w, ih.Version)

	direction := "bottom-up"
	if ih.TopDown() {
		direction = "top-down"
	}
	printField(w, "dimensions", "%d x %d px, %s", ih.Width(), ih.Height(), direction)
	printField(w, "color depth", "%d bpp", ih.BitsPerPixel())

	if ih.Version != bitmap.HeaderCore {
		printField(w, "compression", "%s", ih.Compression)
		printField(w, "raster size", "%d (%s)", ih.SizeImage, humanize.Bytes(uint64(ih.SizeImage)))
		printField(w, "resolution", "%d x %d px/m", ih.XPelsPerMeter, ih.YPelsPerMeter)
	}

	if n := ih.PaletteColors(); n > 0 {
		if ih.Version == bitmap.HeaderCore {
			printField(w, "color table", "%d entries", n)
		} else {
			printField(w, "color table", "%d entries (%d important)", n, ih.ClrImportant)
		}
	}

	if ih.Version >= bitmap.HeaderV4 {
		printField(w, "channel masks", "R=%08x G=%08x B=%08x A=%08x",
			ih.RedMask, ih.GreenMask, ih.BlueMask, ih.AlphaMask)
		printField(w, "color space", "%#08x", ih.CSType)
	}

	if ih.Version == bitmap.HeaderV5 {
		printField(w, "intent", "%d", ih.Intent)
		printField(w, "ICC profile", "%d bytes at offset %d", ih.ProfileSize, ih.ProfileData)
	}

	return nil
}

func printPCXMeta(w io.Writer, data []byte) error {
	img, err := pcx.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	h := &img.Header

	fmt.Fprintln(w, "PCX")
	printField(w, "version", "%d", h.Version)
	printField(w, "dimensions", "%d x %d px", h.Width, h.Height)
	printField(w, "color depth", "%d bpp, %d plane(s)", h.BitsPerPixel, h.Planes)
	printField(w, "bytes per line", "%d", h.BytesPerLine)

	if len(img.Palette) > 0 {
		printField(w, "color table", "%d entries", len(img.Palette))
	}

	return nil
}

func printField(w io.Writer, name, format string, args ...any) {
	fmt.Fprintf(w, "  %-14s %s\n", name, fmt.Sprintf(format, args...))
}
