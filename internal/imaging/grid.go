package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// DefaultGridColor is a semi-transparent red.
var DefaultGridColor = geom.RGBA(255, 0, 0, 128)

// GridOptions controls the coordinate grid drawn over a scaled frame.
type GridOptions struct {
	// Spacing is the distance between lines in canvas points. Zero disables
	// the grid.
	Spacing int
	Color   geom.Color
	// Labels prints canvas coordinates at every line crossing.
	Labels bool
}

// GridOverlay draws grid lines over a copy of scaled, a frame image enlarged
// by scale whose top-left pixel shows canvas point origin. Lines sit on the
// left and top edge of every canvas column and row whose coordinate is a
// multiple of the spacing.
func GridOverlay(scaled image.Image, origin geom.Point, scale int, opts GridOptions) *image.NRGBA {
	dst := imaging.Clone(scaled)
	if opts.Spacing <= 0 || scale < 1 {
		return dst
	}
	b := dst.Bounds()
	line := &image.Uniform{C: opts.Color}

	var cols, rows []int
	for i := 0; i*scale < b.Dx(); i++ {
		if onGrid(int(origin.X)+i, opts.Spacing) {
			x := i * scale
			draw.Draw(dst, image.Rect(x, 0, x+1, b.Dy()), line, image.Point{}, draw.Over)
			cols = append(cols, i)
		}
	}
	for j := 0; j*scale < b.Dy(); j++ {
		if onGrid(int(origin.Y)+j, opts.Spacing) {
			y := j * scale
			draw.Draw(dst, image.Rect(0, y, b.Dx(), y+1), line, image.Point{}, draw.Over)
			rows = append(rows, j)
		}
	}

	if opts.Labels {
		fg := color.NRGBA{255, 255, 255, 255}
		bg := color.NRGBA{0, 0, 0, 180}
		for _, j := range rows {
			for _, i := range cols {
				label := fmt.Sprintf("%d,%d", int(origin.X)+i, int(origin.Y)+j)
				drawLabel(dst, i*scale+2, j*scale+2, label, fg, bg)
			}
		}
	}
	return dst
}

func onGrid(v, spacing int) bool {
	return ((v%spacing)+spacing)%spacing == 0
}

// Simple 3x5 pixel font for coordinate labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text on a filled box with its top-left corner at (x, y),
// clipped to the image.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	const charWidth, labelHeight = 4, 7
	bounds := img.Bounds()

	box := image.Rect(x-1, y-1, x+len(text)*charWidth, y+labelHeight).Intersect(bounds)
	draw.Draw(img, box, &image.Uniform{C: bg}, image.Point{}, draw.Over)

	cx := x
	for _, ch := range text {
		for row, bits := range glyphs[ch] {
			for col, bit := range bits {
				p := image.Pt(cx+col, y+row)
				if bit == '1' && p.In(bounds) {
					img.SetNRGBA(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
