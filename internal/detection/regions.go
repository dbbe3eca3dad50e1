package detection

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// Bounds is an inclusive bounding box.
type Bounds struct {
	Min geom.Point `json:"min"`
	Max geom.Point `json:"max"`
}

// Width is the horizontal extent in points.
func (b Bounds) Width() int { return int(b.Max.X) - int(b.Min.X) + 1 }

// Height is the vertical extent in points.
func (b Bounds) Height() int { return int(b.Max.Y) - int(b.Min.Y) + 1 }

// Region is one connected group of same-colored pixels.
type Region struct {
	Color  geom.Color `json:"color"`
	Bounds Bounds     `json:"bounds"`
	Pixels int        `json:"pixels"`
	// Center is the rounded centroid of the region's pixels. It need not be
	// inside the region.
	Center geom.Point `json:"center"`
	// Fill is the share of the bounding box the region covers (0.0 to 1.0).
	// A filled axis-aligned rectangle scores 1.
	Fill float64 `json:"fill"`
}

// Rectangular reports whether the region is a solid axis-aligned rectangle.
func (r Region) Rectangular() bool {
	return r.Pixels == r.Bounds.Width()*r.Bounds.Height()
}

var (
	neighbours4 = []geom.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	neighbours8 = []geom.Point{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1},
		{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
	}
)

// FindRegions groups the pixels of img into connected regions.
// connectivity must be 4 or 8. Regions with fewer than minPixels pixels are
// dropped. The result is ordered by pixel count, largest first, then by the
// top-left pixel of the bounds.
func FindRegions(img *canvas.Image, connectivity, minPixels int) ([]Region, error) {
	var steps []geom.Point
	switch connectivity {
	case 4:
		steps = neighbours4
	case 8:
		steps = neighbours8
	default:
		return nil, fmt.Errorf("invalid connectivity %d: must be 4 or 8", connectivity)
	}

	visited := make(map[geom.Point]struct{}, img.Len())
	var regions []Region
	for p, c := range img.Pixels() {
		if _, seen := visited[p]; seen {
			continue
		}
		r := floodFill(img, visited, p, c, steps)
		if r.Pixels >= minPixels {
			regions = append(regions, r)
		}
	}

	slices.SortFunc(regions, func(a, b Region) int {
		if c := cmp.Compare(b.Pixels, a.Pixels); c != 0 {
			return c
		}
		return geom.Compare(a.Bounds.Min, b.Bounds.Min)
	})
	return regions, nil
}

// floodFill collects the region of color c containing start. It is
// iterative so large regions cannot overflow the stack.
func floodFill(img *canvas.Image, visited map[geom.Point]struct{}, start geom.Point, c geom.Color, steps []geom.Point) Region {
	r := Region{Color: c, Bounds: Bounds{Min: start, Max: start}}
	var sumX, sumY int64

	stack := []geom.Point{start}
	visited[start] = struct{}{}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		r.Pixels++
		sumX += int64(p.X)
		sumY += int64(p.Y)
		r.Bounds.Min.X = min(r.Bounds.Min.X, p.X)
		r.Bounds.Min.Y = min(r.Bounds.Min.Y, p.Y)
		r.Bounds.Max.X = max(r.Bounds.Max.X, p.X)
		r.Bounds.Max.Y = max(r.Bounds.Max.Y, p.Y)

		for _, d := range steps {
			// Add saturates, so at the edge of int16 space n == p, which is
			// already visited.
			n := p.Add(d)
			if _, seen := visited[n]; seen {
				continue
			}
			if nc, ok := img.GetPixel(n); ok && nc == c {
				visited[n] = struct{}{}
				stack = append(stack, n)
			}
		}
	}

	n := float64(r.Pixels)
	r.Center = geom.Pt(
		int16(math.Round(float64(sumX)/n)),
		int16(math.Round(float64(sumY)/n)),
	)
	r.Fill = math.Round(n/float64(r.Bounds.Width()*r.Bounds.Height())*1000) / 1000
	return r
}
