package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a pixel coordinate. (0,0) is the top-left corner, X grows
// rightward and Y grows downward.
type Point struct {
	X int16
	Y int16
}

// MinPoint and MaxPoint are the first and last points in raster order.
var (
	MinPoint = Point{X: math.MinInt16, Y: math.MinInt16}
	MaxPoint = Point{X: math.MaxInt16, Y: math.MaxInt16}
)

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int16) Point {
	return Point{X: x, Y: y}
}

// Compare orders points by (Y, X). It returns -1, 0 or 1.
func Compare(a, b Point) int {
	switch {
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	}
	return 0
}

// Less reports whether p comes before o in raster order.
func (p Point) Less(o Point) bool {
	return Compare(p, o) < 0
}

// Add returns p+o, saturating each component.
func (p Point) Add(o Point) Point {
	return Point{X: saturate(int(p.X) + int(o.X)), Y: saturate(int(p.Y) + int(o.Y))}
}

// Sub returns p-o, saturating each component.
func (p Point) Sub(o Point) Point {
	return Point{X: saturate(int(p.X) - int(o.X)), Y: saturate(int(p.Y) - int(o.Y))}
}

// Scale multiplies both components by k, saturating.
func (p Point) Scale(k int) Point {
	return Point{X: saturate(mulClamp(int(p.X), k)), Y: saturate(mulClamp(int(p.Y), k))}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int16{p.X, p.Y})
}

// UnmarshalJSON decodes [x, y]. Components outside int16 are rejected.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("point: expected 2 elements, got %d", len(raw))
	}
	for _, v := range raw {
		if v < math.MinInt16 || v > math.MaxInt16 {
			return fmt.Errorf("point: component %d out of int16 range", v)
		}
	}
	p.X, p.Y = int16(raw[0]), int16(raw[1])
	return nil
}

func saturate(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// mulClamp keeps the product inside int32 range so saturate sees the sign
// of an overflowing result.
func mulClamp(a, k int) int {
	const limit = math.MaxInt32
	if a == 0 || k == 0 {
		return 0
	}
	r := a * k
	if r/k != a || r > limit || r < -limit {
		if (a < 0) != (k < 0) {
			return -limit
		}
		return limit
	}
	return r
}
