// Package pal reads and writes Microsoft RIFF palette files. A PAL file is
// a RIFF form of type "PAL " holding a LOGPALETTE structure in a data chunk:
// a version word, an entry count and four bytes per color.
package pal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/image/riff"

	"bmper/internal/bitmap"
)

const logPaletteVersion = 0x0300

var (
	// ErrNotPalette is returned when the stream is not a RIFF palette form
	// or carries no data chunk.
	ErrNotPalette = errors.New("pal: not a RIFF palette")

	// ErrBadChunk is returned when the LOGPALETTE data chunk is malformed.
	ErrBadChunk = errors.New("pal: malformed data chunk")
)

var (
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// Read parses a RIFF PAL stream and returns the colors of its first data
// chunk. Chunks of other types are skipped.
func Read(r io.Reader) (bitmap.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("pal: %w", err)
	}

	if formType != palType {
		return nil, fmt.Errorf("%w: form type %q", ErrNotPalette, formType[:])
	}

	for {
		id, _, data, err := rd.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no data chunk", ErrNotPalette)
		}
		if err != nil {
			return nil, fmt.Errorf("pal: %w", err)
		}

		if id != dataType {
			continue
		}

		return readLogPalette(data)
	}
}

func readLogPalette(r io.Reader) (bitmap.Palette, error) {
	var head struct {
		Version    uint16
		NumEntries uint16
	}

	err := binary.Read(r, binary.LittleEndian, &head)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadChunk, err)
	}

	if head.Version != logPaletteVersion {
		return nil, fmt.Errorf("%w: version %#04x", ErrBadChunk, head.Version)
	}

	palette := make(bitmap.Palette, head.NumEntries)
	for i := range palette {
		var entry [4]byte // peRed, peGreen, peBlue, peFlags

		_, err = io.ReadFull(r, entry[:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBadChunk, i, err)
		}

		palette[i] = bitmap.RGB{R: entry[0], G: entry[1], B: entry[2]}
	}

	return palette, nil
}

// Write serializes the palette as a RIFF PAL file with a single data chunk.
func Write(w io.Writer, palette bitmap.Palette) error {
	// Entry count is always a multiple of four bytes, so the chunk never
	// needs a RIFF pad byte.
	chunkSize := 4 + len(palette)*4

	buf := make([]byte, 0, 12+8+chunkSize)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+8+chunkSize))
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunkSize))
	buf = binary.LittleEndian.AppendUint16(buf, logPaletteVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(palette)))

	for _, c := range palette {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}

	_, err := w.Write(buf)

	return err
}

// ReadFile parses the RIFF PAL file at path.
func ReadFile(path string) (bitmap.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	palette, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return palette, nil
}

// WriteFile writes the palette to path as a RIFF PAL file.
func WriteFile(path string, palette bitmap.Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = Write(f, palette)
	if err != nil {
		f.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}
