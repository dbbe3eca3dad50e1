package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

var (
	// ErrOutOfRange is returned when an imported image would land outside
	// int16 canvas space.
	ErrOutOfRange = errors.New("image does not fit on the canvas at that origin")
	// ErrNothingToImport is returned when every source pixel was skipped.
	ErrNothingToImport = errors.New("image has no pixels to import")
)

// Import converts src into a patch that draws it with its top-left pixel at
// origin. Pixels are grouped into one entry per color, in the order colors
// first appear scanning rows top to bottom. Fully transparent pixels are
// left out when skipTransparent is set; otherwise they are drawn with their
// alpha of zero.
func Import(src image.Image, origin geom.Point, skipTransparent bool) (canvas.Command, error) {
	b := src.Bounds()
	if int(origin.X)+b.Dx()-1 > math.MaxInt16 || int(origin.Y)+b.Dy()-1 > math.MaxInt16 {
		return canvas.Command{}, fmt.Errorf("%w: %dx%d at %v", ErrOutOfRange, b.Dx(), b.Dy(), origin)
	}

	index := make(map[geom.Color]int)
	var entries []canvas.PatchEntry
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := geom.FromColor(src.At(x, y))
			if skipTransparent && c.A == 0 {
				continue
			}
			p := geom.Pt(origin.X+int16(x-b.Min.X), origin.Y+int16(y-b.Min.Y))
			i, ok := index[c]
			if !ok {
				i = len(entries)
				index[c] = i
				entries = append(entries, canvas.PatchEntry{Color: &c})
			}
			entries[i].Points = append(entries[i].Points, p)
		}
	}
	if len(entries) == 0 {
		return canvas.Command{}, ErrNothingToImport
	}
	return canvas.Command{Patch: &canvas.PatchCommand{Entries: entries}}, nil
}
