// Package detector provides hand-landmark detection for the steering loop.
package detector

import (
	"math"

	"github.com/ayusman/handwheel/internal/steer"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// HandConnections lists the landmark pairs joined when drawing a hand skeleton.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a normalized landmark: x and y in [0, 1] of the frame, z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel maps landmark i to pixel coordinates in a width x height frame.
// It reports false when i is out of range or the landmark lies outside the frame.
func (h *HandLandmarks) Pixel(i, width, height int) (x, y int, ok bool) {
	if h == nil || i < 0 || i >= NumLandmarks || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	p := h.Points[i]
	x, okX := toPixel(p.X, width)
	y, okY := toPixel(p.Y, height)
	return x, y, okX && okY
}

// WristPixel returns the wrist as a steering hand position.
func (h *HandLandmarks) WristPixel(width, height int) (steer.HandPosition, bool) {
	x, y, ok := h.Pixel(Wrist, width, height)
	if !ok {
		return steer.HandPosition{}, false
	}
	return steer.Pos(x, y), true
}

func toPixel(v float64, size int) (int, bool) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, false
	}
	return min(int(math.Floor(v*float64(size))), size-1), true
}

// HandPositions converts detected hands to wrist positions in detector order.
// Hands whose wrist falls outside the frame are kept as invalid positions so
// the hand count is preserved.
func HandPositions(hands []HandLandmarks, width, height int) []steer.HandPosition {
	if len(hands) == 0 {
		return nil
	}
	out := make([]steer.HandPosition, len(hands))
	for i := range hands {
		out[i], _ = hands[i].WristPixel(width, height)
	}
	return out
}
