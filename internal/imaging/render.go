package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

var (
	// ErrEmptyCanvas is returned when a range with an open side holds no
	// pixels, so there is nothing to size the raster by.
	ErrEmptyCanvas = errors.New("canvas has no pixels in range")
	// ErrTooLarge is returned when a raster would exceed the size limit.
	ErrTooLarge = errors.New("image exceeds maximum dimension")
	// ErrEmptyRange is returned for a range that contains no points.
	ErrEmptyRange = errors.New("range is empty")
)

// Frame is a rendered part of the canvas. Image pixel (0,0) shows canvas
// point Origin.
type Frame struct {
	Image  *image.NRGBA
	Origin geom.Point
}

// Width of the frame in canvas points.
func (f *Frame) Width() int { return f.Image.Bounds().Dx() }

// Height of the frame in canvas points.
func (f *Frame) Height() int { return f.Image.Bounds().Dy() }

// Render draws the pixels of img inside r. Sides of r that are bounded fix
// the frame edge; open sides shrink to the outermost pixel found. maxDim
// limits either side of the frame; zero means no limit.
func Render(img *canvas.Image, r geom.Range, maxDim int) (*Frame, error) {
	lo, hi, ok := r.Rect()
	if !ok {
		return nil, ErrEmptyRange
	}

	if r.Start.Kind == geom.Unbounded || r.End.Kind == geom.Unbounded {
		found := false
		var pmin, pmax geom.Point
		for p := range img.RangePixels(r) {
			if !found {
				pmin, pmax, found = p, p, true
				continue
			}
			pmin.X, pmin.Y = min(pmin.X, p.X), min(pmin.Y, p.Y)
			pmax.X, pmax.Y = max(pmax.X, p.X), max(pmax.Y, p.Y)
		}
		if !found {
			return nil, ErrEmptyCanvas
		}
		if r.Start.Kind == geom.Unbounded {
			lo = pmin
		}
		if r.End.Kind == geom.Unbounded {
			hi = pmax
		}
	}

	w := int(hi.X) - int(lo.X) + 1
	h := int(hi.Y) - int(lo.Y) + 1
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		return nil, fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, w, h, maxDim)
	}

	dst := imaging.New(w, h, color.NRGBA{})
	for p, c := range img.RangePixels(geom.Through(lo, hi)) {
		dst.SetNRGBA(int(p.X)-int(lo.X), int(p.Y)-int(lo.Y), color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	}
	return &Frame{Image: dst, Origin: lo}, nil
}

// RenderAll draws every pixel of img.
func RenderAll(img *canvas.Image, maxDim int) (*Frame, error) {
	return Render(img, geom.All(), maxDim)
}

// Scale enlarges src by an integer factor with nearest-neighbour sampling so
// each canvas point becomes a crisp scale×scale block.
func Scale(src image.Image, scale, maxDim int) (*image.NRGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("invalid scale %d: must be >= 1", scale)
	}
	b := src.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		return nil, fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, w, h, maxDim)
	}
	if scale == 1 {
		return imaging.Clone(src), nil
	}
	return imaging.Resize(src, w, h, imaging.NearestNeighbor), nil
}

// EncodePNG scales src and encodes it as PNG.
func EncodePNG(src image.Image, scale, maxDim int) ([]byte, error) {
	scaled, err := Scale(src, scale, maxDim)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Export scales src and writes it to path as PNG.
func Export(path string, src image.Image, scale, maxDim int) error {
	if scale < 1 {
		return fmt.Errorf("invalid scale %d: must be >= 1", scale)
	}
	b := src.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		return fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, w, h, maxDim)
	}

	out := src
	if scale > 1 {
		out = transform.Resize(src, w, h, transform.NearestNeighbor)
	}
	if err := imgio.Save(path, out, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to export image: %w", err)
	}
	return nil
}
