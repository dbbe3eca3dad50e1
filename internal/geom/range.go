package geom

import "math"

// BoundKind says how a Bound limits a Range.
type BoundKind uint8

const (
	// Unbounded places no limit on that side.
	Unbounded BoundKind = iota
	// Included limits the side at the bound's point, inclusive.
	Included
	// Excluded limits the side just short of the bound's point.
	Excluded
)

// Bound is one side of a Range.
type Bound struct {
	Kind  BoundKind
	Point Point
}

// Range selects a rectangle of points. Each axis takes its minimum from Start
// and its maximum from End independently, so Through(Pt(0,0), Pt(2,1))
// covers x in [0,2] and y in [0,1].
type Range struct {
	Start Bound
	End   Bound
}

// Between is the half-open range a..b.
func Between(a, b Point) Range {
	return Range{Start: Bound{Included, a}, End: Bound{Excluded, b}}
}

// Through is the closed range a..=b.
func Through(a, b Point) Range {
	return Range{Start: Bound{Included, a}, End: Bound{Included, b}}
}

// From is the range a.. with no upper limit.
func From(a Point) Range {
	return Range{Start: Bound{Included, a}}
}

// UpTo is the range ..b with no lower limit.
func UpTo(b Point) Range {
	return Range{End: Bound{Excluded, b}}
}

// All covers every point.
func All() Range {
	return Range{}
}

// Rect resolves the range to inclusive corners. ok is false when the range
// selects no points.
func (r Range) Rect() (min, max Point, ok bool) {
	minX, okX := lower(r.Start, r.Start.Point.X)
	minY, okY := lower(r.Start, r.Start.Point.Y)
	maxX, okX2 := upper(r.End, r.End.Point.X)
	maxY, okY2 := upper(r.End, r.End.Point.Y)
	if !okX || !okY || !okX2 || !okY2 || minX > maxX || minY > maxY {
		return Point{}, Point{}, false
	}
	return Point{X: minX, Y: minY}, Point{X: maxX, Y: maxY}, true
}

// Contains reports whether p lies in the range.
func (r Range) Contains(p Point) bool {
	min, max, ok := r.Rect()
	if !ok {
		return false
	}
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

func lower(b Bound, v int16) (int16, bool) {
	switch b.Kind {
	case Included:
		return v, true
	case Excluded:
		if v == math.MaxInt16 {
			return 0, false
		}
		return v + 1, true
	}
	return math.MinInt16, true
}

func upper(b Bound, v int16) (int16, bool) {
	switch b.Kind {
	case Included:
		return v, true
	case Excluded:
		if v == math.MinInt16 {
			return 0, false
		}
		return v - 1, true
	}
	return math.MaxInt16, true
}
