package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

var (
	red  = geom.RGB(255, 0, 0)
	blue = geom.RGBA(0, 0, 255, 128)
)

func sampleCanvas() *canvas.Image {
	img := canvas.New()
	img.Apply(canvas.Draw(red, geom.Pt(-2, -1), geom.Pt(0, 0)))
	img.Apply(canvas.Draw(blue, geom.Pt(3, 2)))
	return img
}

func nrgbaAt(img *image.NRGBA, x, y int) color.NRGBA {
	return img.NRGBAAt(x, y)
}

func TestRender_All(t *testing.T) {
	f, err := RenderAll(sampleCanvas(), 0)
	if err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}

	if f.Origin != geom.Pt(-2, -1) {
		t.Errorf("Origin: got %v, want (-2,-1)", f.Origin)
	}
	if f.Width() != 6 || f.Height() != 4 {
		t.Fatalf("size: got %dx%d, want 6x4", f.Width(), f.Height())
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"top-left pixel", 0, 0, color.NRGBA{255, 0, 0, 255}},
		{"origin pixel", 2, 1, color.NRGBA{255, 0, 0, 255}},
		{"translucent pixel", 5, 3, color.NRGBA{0, 0, 255, 128}},
		{"unset is transparent", 1, 1, color.NRGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nrgbaAt(f.Image, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRender_BoundedRange(t *testing.T) {
	f, err := Render(sampleCanvas(), geom.Through(geom.Pt(0, 0), geom.Pt(9, 4)), 0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if f.Origin != geom.Pt(0, 0) || f.Width() != 10 || f.Height() != 5 {
		t.Errorf("frame: origin %v size %dx%d, want (0,0) 10x5", f.Origin, f.Width(), f.Height())
	}
	if got := nrgbaAt(f.Image, 3, 2); got != (color.NRGBA{0, 0, 255, 128}) {
		t.Errorf("pixel (3,2): got %v", got)
	}
}

func TestRender_HalfOpenRange(t *testing.T) {
	f, err := Render(sampleCanvas(), geom.From(geom.Pt(0, 0)), 0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if f.Origin != geom.Pt(0, 0) || f.Width() != 4 || f.Height() != 3 {
		t.Errorf("frame: origin %v size %dx%d, want (0,0) 4x3", f.Origin, f.Width(), f.Height())
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		img     *canvas.Image
		r       geom.Range
		maxDim  int
		wantErr error
	}{
		{"empty canvas", canvas.New(), geom.All(), 0, ErrEmptyCanvas},
		{"empty range", sampleCanvas(), geom.Between(geom.Pt(5, 5), geom.Pt(5, 5)), 0, ErrEmptyRange},
		{"too large", sampleCanvas(), geom.All(), 4, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.img, tt.r, tt.maxDim)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	f, err := RenderAll(sampleCanvas(), 0)
	if err != nil {
		t.Fatal(err)
	}

	data, err := EncodePNG(f.Image, 4, 0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 24 || b.Dy() != 16 {
		t.Errorf("scaled size: got %dx%d, want 24x16", b.Dx(), b.Dy())
	}

	// Every pixel of the 4x4 block for canvas (0,0) keeps the exact color.
	for y := 4; y < 8; y++ {
		for x := 8; x < 12; x++ {
			if got := geom.FromColor(decoded.At(x, y)); got != red {
				t.Fatalf("scaled pixel (%d,%d): got %v, want %v", x, y, got, red)
			}
		}
	}

	if _, err := EncodePNG(f.Image, 0, 0); err == nil {
		t.Error("EncodePNG should reject scale 0")
	}
	if _, err := EncodePNG(f.Image, 100, 512); !errors.Is(err, ErrTooLarge) {
		t.Errorf("EncodePNG over the limit: got %v, want ErrTooLarge", err)
	}
}

func TestExport(t *testing.T) {
	f, err := RenderAll(sampleCanvas(), 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, scale := range []int{1, 3} {
		path := filepath.Join(t.TempDir(), "out.png")
		if err := Export(path, f.Image, scale, 0); err != nil {
			t.Fatalf("Export(scale=%d) failed: %v", scale, err)
		}

		cache := NewImageCache()
		img, err := cache.Load(path)
		if err != nil {
			t.Fatalf("reading export back: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 6*scale || b.Dy() != 4*scale {
			t.Errorf("scale %d: size %dx%d", scale, b.Dx(), b.Dy())
		}
		if got := geom.FromColor(img.At(2*scale, 1*scale)); got != red {
			t.Errorf("scale %d: origin pixel got %v, want %v", scale, got, red)
		}
	}

	if err := Export(filepath.Join(t.TempDir(), "x.png"), f.Image, 0, 0); err == nil {
		t.Error("Export should reject scale 0")
	}
}
