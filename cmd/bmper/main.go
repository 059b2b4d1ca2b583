// Command bmper inspects and transforms BMP and PCX raster files and serves
// a browser preview of a single image.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"bmper/internal/bitmap"
	"bmper/internal/pcx"
)

const appVersion = "v0.1.0"

var cli struct {
	Version kong.VersionFlag `help:"Show version information"`

	Meta       MetaCmd       `cmd:"" help:"Show the headers of a BMP or PCX file"`
	Border     BorderCmd     `cmd:"" help:"Draw a randomized border into a bitmap"`
	Logo       LogoCmd       `cmd:"" help:"Overlay a logo in the corner of a 24 bpp bitmap"`
	Convert    ConvertCmd    `cmd:"" help:"Convert a PCX file into a bitmap"`
	Compress   CompressCmd   `cmd:"" help:"Rewrite a bitmap with an RLE8 compressed raster"`
	Decompress DecompressCmd `cmd:"" help:"Rewrite an RLE8 bitmap with a flat raster"`
	Palette    PaletteCmd    `cmd:"" help:"Export the color table as a RIFF palette file"`
	Serve      ServeCmd      `cmd:"" help:"Serve a browser preview of an image"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("bmper"),
		kong.Description("BMP and PCX raster tool."),
		kong.UsageOnError(),
		kong.Vars{"version": "bmper " + appVersion},
	)

	kctx.FatalIfErrorf(kctx.Run())
}

// outputPath returns the explicit destination when one was given, otherwise
// derives one next to the source file. A derived path never points back at
// the source; overwriting the input takes an explicit -o.
func outputPath(explicit, source, suffix, ext string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	derived := strings.TrimSuffix(source, filepath.Ext(source)) + suffix + ext
	if derived == source {
		return "", fmt.Errorf("default output %q would overwrite the input, pass -o", derived)
	}

	return derived, nil
}

// readImage loads a BMP or PCX file into a bitmap image, telling the formats
// apart by their magic bytes. PCX color tables are carried over in full.
func readImage(path string) (*bitmap.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if pcx.Sniff(data) {
		img, err := pcx.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return img.Bitmap()
	}

	img, err := bitmap.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return img, nil
}
