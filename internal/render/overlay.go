// Package render draws the steering wheel overlay and shows frames.
//
// Building an Overlay is pure and works on pixel coordinates of the raw
// (unflipped) frame; Draw applies it to a gocv.Mat.
package render

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/steer"
)

// Overlay styling.
var (
	// WheelColor is BGR (195, 255, 62). gocv maps color.RGBA to BGR scalars.
	WheelColor      = color.RGBA{R: 62, G: 255, B: 195, A: 0}
	CaptionColor    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	LandmarkColor   = color.RGBA{R: 255, G: 48, B: 48, A: 0}
	ConnectionColor = color.RGBA{R: 224, G: 224, B: 224, A: 0}
)

const (
	WheelThickness      = 15
	RimThickness        = 20
	IndicatorThickness  = 20
	LandmarkRadius      = 4
	ConnectionThickness = 2
)

// CaptionAnchor is where the caption is centred in the raw frame.
var CaptionAnchor = image.Pt(100, 50)

// Segment is a line between two pixel points.
type Segment struct {
	From, To image.Point
}

// Skeleton is one hand's visible landmarks and connections.
type Skeleton struct {
	Points      []image.Point
	Connections []Segment
}

// Overlay is everything drawn on one frame.
type Overlay struct {
	Hands []Skeleton

	// Wheel is set when the geometry is defined.
	Wheel *Wheel

	// Indicator is the active steering spoke, if any.
	Indicator *Segment

	Caption string
}

// Wheel is the circle and rim line of the virtual steering wheel.
type Wheel struct {
	Center image.Point
	Radius int
	Rim    Segment
}

// Build assembles the overlay for one frame.
func Build(hands []detector.HandLandmarks, geom *steer.Geometry, cmd steer.Command, radius float64, width, height int) Overlay {
	o := Overlay{Caption: cmd.Caption()}

	for i := range hands {
		o.Hands = append(o.Hands, skeleton(&hands[i], width, height))
	}

	if geom == nil {
		return o
	}

	o.Wheel = &Wheel{
		Center: point(geom.Mid),
		Radius: int(radius),
		Rim:    Segment{From: point(geom.RimA), To: point(geom.RimB)},
	}
	if end, ok := IndicatorEnd(cmd, *geom); ok {
		o.Indicator = &Segment{From: point(end), To: point(geom.Mid)}
	}
	return o
}

// IndicatorEnd picks the spoke endpoint drawn for cmd. FORWARD uses the
// endpoint lower on screen.
func IndicatorEnd(cmd steer.Command, g steer.Geometry) (r2.Vec, bool) {
	switch cmd {
	case steer.Left:
		return g.IndicatorA, true
	case steer.Right:
		return g.IndicatorB, true
	case steer.Forward:
		if g.IndicatorB.Y > g.IndicatorA.Y {
			return g.IndicatorB, true
		}
		return g.IndicatorA, true
	default:
		return r2.Vec{}, false
	}
}

func skeleton(h *detector.HandLandmarks, width, height int) Skeleton {
	var s Skeleton
	var pts [detector.NumLandmarks]image.Point
	var visible [detector.NumLandmarks]bool

	for i := 0; i < detector.NumLandmarks; i++ {
		x, y, ok := h.Pixel(i, width, height)
		if !ok {
			continue
		}
		pts[i] = image.Pt(x, y)
		visible[i] = true
		s.Points = append(s.Points, pts[i])
	}

	for _, c := range detector.HandConnections {
		if visible[c[0]] && visible[c[1]] {
			s.Connections = append(s.Connections, Segment{From: pts[c[0]], To: pts[c[1]]})
		}
	}
	return s
}

// point truncates toward zero like an int() cast.
func point(v r2.Vec) image.Point {
	return image.Pt(int(math.Trunc(v.X)), int(math.Trunc(v.Y)))
}
