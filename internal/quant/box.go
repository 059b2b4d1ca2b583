package quant

import (
	"sort"

	"bmper/internal/bitmap"
)

// Luma weights per channel, scaled by 10000 to stay in integers.
const (
	lumaR = 2126
	lumaG = 7152
	lumaB = 722
)

type entry struct {
	color bitmap.RGB
	freq  uint64
}

// box is one median-cut work item: a set of distinct weighted colors.
type box struct {
	entries []entry
}

const (
	axisR = iota
	axisG
	axisB
)

// axis picks the split channel: the one with the highest luma-weighted
// frequency sum. Ties resolve to the earlier channel in R, G, B order.
func (b *box) axis() int {
	var sumR, sumG, sumB uint64

	for _, e := range b.entries {
		sumR += e.freq * uint64(e.color.R)
		sumG += e.freq * uint64(e.color.G)
		sumB += e.freq * uint64(e.color.B)
	}

	axis := axisR
	best := lumaR * sumR

	if score := lumaG * sumG; score > best {
		axis = axisG
		best = score
	}

	if score := lumaB * sumB; score > best {
		axis = axisB
	}

	return axis
}

// split sorts the box along its axis and cuts at the median index. Both
// halves are non-empty for any box of two or more colors.
func (b *box) split() (*box, *box) {
	axis := b.axis()

	sort.Slice(b.entries, func(i, j int) bool {
		return less(sortKey(b.entries[i].color, axis), sortKey(b.entries[j].color, axis))
	})

	mid := len(b.entries) / 2

	return &box{entries: b.entries[:mid:mid]}, &box{entries: b.entries[mid:]}
}

// sortKey orders colors by the split axis first; the remaining channels
// break ties in R, G, B priority. Colors in a box are distinct, so the
// three-channel key is a total order.
func sortKey(c bitmap.RGB, axis int) [3]uint8 {
	switch axis {
	case axisG:
		return [3]uint8{c.G, c.R, c.B}
	case axisB:
		return [3]uint8{c.B, c.R, c.G}
	default:
		return [3]uint8{c.R, c.G, c.B}
	}
}

func less(a, b [3]uint8) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

// representative collapses the box to the frequency-weighted mean of its
// colors, each channel rounded to nearest. A box whose members never occur
// in the raster weighs them equally.
func (b *box) representative() bitmap.RGB {
	var total uint64
	for _, e := range b.entries {
		total += e.freq
	}

	uniform := total == 0
	if uniform {
		total = uint64(len(b.entries))
	}

	var sumR, sumG, sumB uint64

	for _, e := range b.entries {
		w := e.freq
		if uniform {
			w = 1
		}

		sumR += w * uint64(e.color.R)
		sumG += w * uint64(e.color.G)
		sumB += w * uint64(e.color.B)
	}

	return bitmap.RGB{
		R: uint8((sumR + total/2) / total),
		G: uint8((sumG + total/2) / total),
		B: uint8((sumB + total/2) / total),
	}
}
