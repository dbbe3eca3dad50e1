package canvas

import (
	"iter"
	"math"

	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// RangePixels yields the pixels inside r in raster order without visiting
// the rest of the image.
//
// The tree is keyed by (y, x), so a rectangle is not one contiguous run of
// keys. The iterator seeks to the rectangle's left edge on each row it
// reaches and, once a row runs past the right edge, seeks straight to the
// start of the next row. Each call returns a fresh sequence.
func (img *Image) RangePixels(r geom.Range) iter.Seq2[geom.Point, geom.Color] {
	return func(yield func(geom.Point, geom.Color) bool) {
		min, max, ok := r.Rect()
		if !ok {
			return
		}

		it := img.pixels.Iter()
		defer it.Release()

		found := it.Seek(pixel{p: min})
		for found {
			px := it.Item()
			switch {
			case px.p.Y > max.Y:
				return
			case px.p.X < min.X:
				found = it.Seek(pixel{p: geom.Point{X: min.X, Y: px.p.Y}})
			case px.p.X > max.X:
				if px.p.Y == math.MaxInt16 {
					return
				}
				found = it.Seek(pixel{p: geom.Point{X: min.X, Y: px.p.Y + 1}})
			default:
				if !yield(px.p, px.c) {
					return
				}
				found = it.Next()
			}
		}
	}
}
