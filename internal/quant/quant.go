// Package quant reduces indexed-color palettes with a frequency-weighted
// median cut. The palette is deduplicated into weighted color boxes which are
// split breadth-first along the channel with the highest luma-weighted
// score until the target count is reached; every final box collapses to its
// weighted mean color.
package quant

import (
	"errors"
	"fmt"

	"bmper/internal/bitmap"
)

// ErrInvalidInput is returned for a target outside [1, len(palette)] or a
// frequency table that does not match the palette.
var ErrInvalidInput = errors.New("quant: invalid input")

// FrequencyTable counts pixel occurrences per palette index.
type FrequencyTable []uint64

// CountFrequencies scans an indexed raster and counts how often each of the
// colors palette entries occurs. A pixel indexing beyond the palette fails
// with the accessor's out-of-bounds error.
func CountFrequencies(r *bitmap.Raster, colors int) (FrequencyTable, error) {
	if r.BitsPerPixel > 8 {
		return nil, fmt.Errorf("%w: counting indices at %d bpp", bitmap.ErrUnsupportedDepth, r.BitsPerPixel)
	}

	table := make(FrequencyTable, colors)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			v, err := r.Pixel(x, y)
			if err != nil {
				return nil, err
			}

			if int(v) >= colors {
				return nil, fmt.Errorf("%w: color index %d with %d palette entries",
					bitmap.ErrOutOfBounds, v, colors)
			}

			table[v]++
		}
	}

	return table, nil
}

// Reduce quantizes the palette down to exactly target colors. freq[i] weighs
// palette[i] by its pixel count. The returned index map is total: it sends
// every original palette index to the index of its replacement color.
//
// Duplicate palette entries are merged, with their frequencies summed, before
// any splitting; if fewer distinct colors than target remain, the output is
// padded by repeating representatives so it still holds target entries.
func Reduce(palette bitmap.Palette, freq FrequencyTable, target int) (bitmap.Palette, []uint8, error) {
	if target < 1 || target > len(palette) {
		return nil, nil, fmt.Errorf("%w: target %d for a %d color palette",
			ErrInvalidInput, target, len(palette))
	}

	if len(palette) > 256 {
		return nil, nil, fmt.Errorf("%w: %d palette entries", ErrInvalidInput, len(palette))
	}

	if len(freq) != len(palette) {
		return nil, nil, fmt.Errorf("%w: %d frequencies for %d colors",
			ErrInvalidInput, len(freq), len(palette))
	}

	boxes := splitBoxes(seedBox(palette, freq), target)

	out := make(bitmap.Palette, 0, target)
	boxOf := make(map[bitmap.RGB]uint8, len(palette))

	for i, b := range boxes {
		out = append(out, b.representative())

		for _, e := range b.entries {
			boxOf[e.color] = uint8(i)
		}
	}

	// Fewer distinct colors than target: repeat representatives so the
	// palette still has exactly target entries.
	for i := 0; len(out) < target; i++ {
		out = append(out, out[i%len(boxes)])
	}

	indexMap := make([]uint8, len(palette))
	for i, c := range palette {
		indexMap[i] = boxOf[c]
	}

	return out, indexMap, nil
}

// seedBox deduplicates the palette into one box, summing the frequencies of
// identical colors and keeping first-seen order.
func seedBox(palette bitmap.Palette, freq FrequencyTable) *box {
	seen := make(map[bitmap.RGB]int, len(palette))
	entries := make([]entry, 0, len(palette))

	for i, c := range palette {
		if j, ok := seen[c]; ok {
			entries[j].freq += freq[i]

			continue
		}

		seen[c] = len(entries)
		entries = append(entries, entry{color: c, freq: freq[i]})
	}

	return &box{entries: entries}
}

// splitBoxes works through a FIFO queue, splitting each box into two and
// queuing the halves, which visits the boxes generation by generation. A box
// down to a single color retires. Splitting stops when target boxes exist or
// nothing splittable remains.
func splitBoxes(seed *box, target int) []*box {
	final := make([]*box, 0, target)
	queue := []*box{seed}

	for len(queue) > 0 && len(final)+len(queue) < target {
		b := queue[0]
		queue = queue[1:]

		if len(b.entries) < 2 {
			final = append(final, b)

			continue
		}

		lo, hi := b.split()
		queue = append(queue, lo, hi)
	}

	return append(final, queue...)
}
