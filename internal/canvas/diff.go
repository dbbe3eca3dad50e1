package canvas

import (
	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// Diff returns the smallest patch that turns img's pixels into newer's.
//
// Both pixel trees are walked once, in raster order, with one cursor each.
// The result holds at most one erase entry, first, followed by one draw entry
// per distinct new color in the order the colors were first met. Anchors and
// metadata are not part of the patch.
func (img *Image) Diff(newer *Image) PatchCommand {
	var removed []geom.Point
	var colors []geom.Color
	added := make(map[geom.Color][]geom.Point)
	add := func(px pixel) {
		if _, ok := added[px.c]; !ok {
			colors = append(colors, px.c)
		}
		added[px.c] = append(added[px.c], px.p)
	}

	oldIt := img.pixels.Iter()
	defer oldIt.Release()
	newIt := newer.pixels.Iter()
	defer newIt.Release()

	oldOK, newOK := oldIt.First(), newIt.First()
	for oldOK || newOK {
		if !oldOK {
			add(newIt.Item())
			newOK = newIt.Next()
			continue
		}
		if !newOK {
			removed = append(removed, oldIt.Item().p)
			oldOK = oldIt.Next()
			continue
		}
		o, n := oldIt.Item(), newIt.Item()
		switch geom.Compare(o.p, n.p) {
		case 0:
			if o.c != n.c {
				add(n)
			}
			oldOK, newOK = oldIt.Next(), newIt.Next()
		case -1:
			removed = append(removed, o.p)
			oldOK = oldIt.Next()
		default:
			add(n)
			newOK = newIt.Next()
		}
	}

	patch := PatchCommand{Entries: make([]PatchEntry, 0, len(colors)+1)}
	if len(removed) > 0 {
		patch.Entries = append(patch.Entries, PatchEntry{Points: removed})
	}
	for _, c := range colors {
		patch.Entries = append(patch.Entries, PatchEntry{Color: &c, Points: added[c]})
	}
	return patch
}

// Command wraps the patch so it can be applied or logged.
func (p PatchCommand) Command() Command {
	return Command{Patch: &p}
}

// Empty reports whether the patch has no entries.
func (p PatchCommand) Empty() bool {
	return len(p.Entries) == 0
}
