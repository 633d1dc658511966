// Package steer turns two wrist positions into a virtual steering wheel,
// a driving command, and the matching set of held direction keys.
package steer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultRadius is the steering wheel radius in pixels.
const DefaultRadius = 150.0

// HandPosition is the pixel position of a hand's wrist landmark.
// Valid is false when the detector reported a hand whose wrist could not be
// mapped into the frame.
type HandPosition struct {
	X     int
	Y     int
	Valid bool
}

// Pos returns a valid HandPosition at (x, y).
func Pos(x, y int) HandPosition {
	return HandPosition{X: x, Y: y, Valid: true}
}

func (p HandPosition) vec() r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// Geometry is the steering wheel spanned by two hands.
// All points are in the detector's raw, un-mirrored pixel space.
type Geometry struct {
	Mid   r2.Vec
	Angle float64 // radians, atan2 of hand 0 -> hand 1

	// Rim endpoints lie on the wheel diameter through both hands.
	RimA r2.Vec
	RimB r2.Vec

	// Indicator endpoints lie on the diameter perpendicular to the rim.
	IndicatorA r2.Vec
	IndicatorB r2.Vec
}

// ComputeGeometry derives the wheel from hand a (detector index 0) and hand b
// (index 1). The order is significant and must not be sorted by position.
// It reports false when either hand is malformed or the radius is not a
// positive finite number.
func ComputeGeometry(a, b HandPosition, radius float64) (Geometry, bool) {
	if !a.Valid || !b.Valid {
		return Geometry{}, false
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return Geometry{}, false
	}

	pa, pb := a.vec(), b.vec()
	d := r2.Sub(pb, pa)
	angle := math.Atan2(d.Y, d.X)
	mid := r2.Scale(0.5, r2.Add(pa, pb))

	rim := r2.Scale(radius, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)})
	perp := angle + math.Pi/2
	ind := r2.Scale(radius, r2.Vec{X: math.Cos(perp), Y: math.Sin(perp)})

	return Geometry{
		Mid:        mid,
		Angle:      angle,
		RimA:       r2.Add(mid, rim),
		RimB:       r2.Sub(mid, rim),
		IndicatorA: r2.Add(mid, ind),
		IndicatorB: r2.Sub(mid, ind),
	}, true
}

// MirroredAngle returns the steering angle in degrees as seen in the
// horizontally flipped display of a frame frameWidth pixels wide.
func MirroredAngle(a, b HandPosition, frameWidth int) float64 {
	dx := (frameWidth - a.X) - (frameWidth - b.X)
	dy := b.Y - a.Y
	return math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi
}
