package imaging

import (
	"cmp"
	"math"
	"slices"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// RGBAColor holds 8-bit components. Alpha 0 is fully transparent.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor is a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult describes one color in the forms tool clients ask for.
type ColorResult struct {
	Hex  string    `json:"hex"`
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// Describe returns c in hex, RGBA and HSL form.
func Describe(c geom.Color) ColorResult {
	h, s, l := c.HSL()
	return ColorResult{
		Hex:  c.Hex(),
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  HSLColor{H: h, S: s, L: l},
	}
}

// ColorFrequency is one palette entry.
type ColorFrequency struct {
	Color      geom.Color `json:"color"`
	Hex        string     `json:"hex"`
	Count      int        `json:"count"`
	Percentage float64    `json:"percentage"` // share of set pixels, 0-100
}

// Palette returns the distinct colors of img, most frequent first. Ties are
// broken by color order so the result is deterministic. count limits the
// result; zero or less returns every color.
func Palette(img *canvas.Image, count int) []ColorFrequency {
	counts := make(map[geom.Color]int)
	total := 0
	for _, c := range img.Pixels() {
		counts[c]++
		total++
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Color:      c,
			Hex:        c.Hex(),
			Count:      n,
			Percentage: math.Round(float64(n)/float64(total)*10000) / 100,
		})
	}

	slices.SortFunc(colors, func(a, b ColorFrequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Color.Compare(b.Color)
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

// Nearest returns the palette color perceptually closest to c (CIEDE2000)
// and its index. ok is false for an empty palette.
func Nearest(palette []geom.Color, c geom.Color) (nearest geom.Color, index int, ok bool) {
	best := math.Inf(1)
	for i, p := range palette {
		if d := c.Distance(p); d < best {
			best, nearest, index, ok = d, p, i, true
		}
	}
	return nearest, index, ok
}

// Quantize maps every pixel of img onto its nearest palette color and
// returns the patch that does it. Pixels already on the palette are left
// out, so the patch is empty when nothing would change.
func Quantize(img *canvas.Image, palette []geom.Color) canvas.PatchCommand {
	index := make(map[geom.Color]int)
	var entries []canvas.PatchEntry
	for p, c := range img.Pixels() {
		n, _, ok := Nearest(palette, c)
		if !ok || n == c {
			continue
		}
		i, seen := index[n]
		if !seen {
			i = len(entries)
			index[n] = i
			entries = append(entries, canvas.PatchEntry{Color: &n})
		}
		entries[i].Points = append(entries[i].Points, p)
	}
	return canvas.PatchCommand{Entries: entries}
}
