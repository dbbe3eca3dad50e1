package imaging

import (
	"math"

	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// DistanceResult describes the vector between two canvas points.
type DistanceResult struct {
	DistancePixels float64 `json:"distance_pixels"`
	DeltaX         int     `json:"delta_x"`
	DeltaY         int     `json:"delta_y"`
	AngleDegrees   float64 `json:"angle_degrees"` // 0 = right, 90 = down
}

// MeasureDistance measures from a to b.
func MeasureDistance(a, b geom.Point) DistanceResult {
	dx := int(b.X) - int(a.X)
	dy := int(b.Y) - int(a.Y)
	distance := math.Hypot(float64(dx), float64(dy))
	angle := math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi

	return DistanceResult{
		DistancePixels: math.Round(distance*100) / 100,
		DeltaX:         dx,
		DeltaY:         dy,
		AngleDegrees:   math.Round(angle*10) / 10,
	}
}

// AlignmentResult reports whether a set of points lines up.
type AlignmentResult struct {
	HorizontallyAligned bool    `json:"horizontally_aligned"`
	VerticallyAligned   bool    `json:"vertically_aligned"`
	HorizontalVariance  float64 `json:"horizontal_variance"`
	VerticalVariance    float64 `json:"vertical_variance"`
	AverageX            float64 `json:"average_x"`
	AverageY            float64 `json:"average_y"`
}

// CheckAlignment reports whether points share a row or column within
// tolerance, measured as the standard deviation of each axis. Fewer than two
// points are trivially aligned.
func CheckAlignment(points []geom.Point, tolerance int) AlignmentResult {
	if len(points) < 2 {
		return AlignmentResult{HorizontallyAligned: true, VerticallyAligned: true}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}
	n := float64(len(points))
	avgX, avgY := sumX/n, sumY/n

	var varX, varY float64
	for _, p := range points {
		dx := float64(p.X) - avgX
		dy := float64(p.Y) - avgY
		varX += dx * dx
		varY += dy * dy
	}
	varX = math.Sqrt(varX / n)
	varY = math.Sqrt(varY / n)

	return AlignmentResult{
		HorizontallyAligned: varY <= float64(tolerance),
		VerticallyAligned:   varX <= float64(tolerance),
		HorizontalVariance:  math.Round(varY*100) / 100,
		VerticalVariance:    math.Round(varX*100) / 100,
		AverageX:            math.Round(avgX*100) / 100,
		AverageY:            math.Round(avgY*100) / 100,
	}
}
