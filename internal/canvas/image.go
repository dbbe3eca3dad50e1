package canvas

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"

	"github.com/tidwall/btree"

	"github.com/ironsheep/pixel-ledger/internal/geom"
)

type pixel struct {
	p geom.Point
	c geom.Color
}

func lessPixel(a, b pixel) bool {
	return a.p.Less(b.p)
}

// Image is the sparse state of a canvas: colored pixels, named anchors and
// JSON metadata. All three are kept sorted so iteration order is stable.
//
// Image is not safe for concurrent use.
type Image struct {
	pixels   *btree.BTreeG[pixel]
	anchors  *btree.Map[string, geom.Point]
	metadata *btree.Map[string, string]
}

// New returns an empty image.
func New() *Image {
	return &Image{
		pixels:   btree.NewBTreeGOptions(lessPixel, btree.Options{NoLocks: true}),
		anchors:  new(btree.Map[string, geom.Point]),
		metadata: new(btree.Map[string, string]),
	}
}

// Clone returns an independent copy. The trees are copied on write, so this
// is cheap until either side is modified.
func (img *Image) Clone() *Image {
	return &Image{
		pixels:   img.pixels.Copy(),
		anchors:  img.anchors.Copy(),
		metadata: img.metadata.Copy(),
	}
}

// Len is the number of colored pixels.
func (img *Image) Len() int {
	return img.pixels.Len()
}

// GetPixel returns the color at p, if any.
func (img *Image) GetPixel(p geom.Point) (geom.Color, bool) {
	px, ok := img.pixels.Get(pixel{p: p})
	return px.c, ok
}

// Pixels yields every pixel in raster order.
func (img *Image) Pixels() iter.Seq2[geom.Point, geom.Color] {
	return func(yield func(geom.Point, geom.Color) bool) {
		img.pixels.Scan(func(px pixel) bool {
			return yield(px.p, px.c)
		})
	}
}

// Bounds returns the inclusive corners of the smallest rectangle holding
// every pixel. ok is false for an empty image.
func (img *Image) Bounds() (min, max geom.Point, ok bool) {
	first, ok := img.pixels.Min()
	if !ok {
		return geom.Point{}, geom.Point{}, false
	}
	last, _ := img.pixels.Max()
	min, max = first.p, last.p
	img.pixels.Scan(func(px pixel) bool {
		if px.p.X < min.X {
			min.X = px.p.X
		}
		if px.p.X > max.X {
			max.X = px.p.X
		}
		return true
	})
	return min, max, true
}

// Anchor returns the point of the named anchor.
func (img *Image) Anchor(name string) (geom.Point, bool) {
	return img.anchors.Get(name)
}

// Anchors yields every anchor sorted by name.
func (img *Image) Anchors() iter.Seq2[string, geom.Point] {
	return func(yield func(string, geom.Point) bool) {
		img.anchors.Scan(yield)
	}
}

// Metadata returns the stored JSON value for name.
func (img *Image) Metadata(name string) (json.RawMessage, bool) {
	v, ok := img.metadata.Get(name)
	if !ok {
		return nil, false
	}
	return json.RawMessage(v), true
}

// MetadataItems yields every metadata entry sorted by name.
func (img *Image) MetadataItems() iter.Seq2[string, json.RawMessage] {
	return func(yield func(string, json.RawMessage) bool) {
		img.metadata.Scan(func(k, v string) bool {
			return yield(k, json.RawMessage(v))
		})
	}
}

// Apply mutates the image and reports whether anything changed. Commands
// that would leave every mapping as it was return false.
func (img *Image) Apply(cmd Command) bool {
	switch {
	case cmd.Patch != nil:
		return img.applyPatch(cmd.Patch)
	case cmd.Anchor != nil:
		return img.applyAnchor(cmd.Anchor)
	case cmd.Put != nil:
		return img.applyPut(cmd.Put)
	}
	return false
}

func (img *Image) applyPatch(p *PatchCommand) bool {
	changed := false
	for _, e := range p.Entries {
		for _, pt := range e.Points {
			if e.Color == nil {
				if _, ok := img.pixels.Delete(pixel{p: pt}); ok {
					changed = true
				}
				continue
			}
			prev, replaced := img.pixels.Set(pixel{p: pt, c: *e.Color})
			if !replaced || prev.c != *e.Color {
				changed = true
			}
		}
	}
	return changed
}

func (img *Image) applyAnchor(a *AnchorCommand) bool {
	if a.Point == nil {
		_, ok := img.anchors.Delete(a.Name)
		return ok
	}
	prev, replaced := img.anchors.Set(a.Name, *a.Point)
	return !replaced || prev != *a.Point
}

// applyPut stores the canonical encoding of the value. A value that is not
// valid JSON changes nothing.
func (img *Image) applyPut(p *PutCommand) bool {
	value, isNull, err := canonicalJSON(p.Value)
	if err != nil {
		return false
	}
	if isNull {
		_, ok := img.metadata.Delete(p.Name)
		return ok
	}
	prev, replaced := img.metadata.Set(p.Name, value)
	return !replaced || prev != value
}

// canonicalJSON re-encodes raw so that structurally equal values compare
// equal as strings. Object keys come out sorted; numbers keep their text.
func canonicalJSON(raw json.RawMessage) (string, bool, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", true, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", false, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), false, nil
}

// Equal reports whether both images hold the same pixels, anchors and
// metadata.
func (img *Image) Equal(other *Image) bool {
	if img.pixels.Len() != other.pixels.Len() ||
		img.anchors.Len() != other.anchors.Len() ||
		img.metadata.Len() != other.metadata.Len() {
		return false
	}
	if len(img.Diff(other).Entries) != 0 {
		return false
	}
	ak, av := img.anchors.KeyValues()
	bk, bv := other.anchors.KeyValues()
	for i := range ak {
		if ak[i] != bk[i] || av[i] != bv[i] {
			return false
		}
	}
	mk, mv := img.metadata.KeyValues()
	nk, nv := other.metadata.KeyValues()
	for i := range mk {
		if mk[i] != nk[i] || mv[i] != nv[i] {
			return false
		}
	}
	return true
}
