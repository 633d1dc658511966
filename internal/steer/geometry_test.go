package steer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeGeometry_Midpoint(t *testing.T) {
	tests := []struct {
		name string
		a, b HandPosition
	}{
		{name: "horizontal", a: Pos(100, 100), b: Pos(300, 100)},
		{name: "vertical", a: Pos(100, 100), b: Pos(100, 300)},
		{name: "diagonal", a: Pos(20, 400), b: Pos(610, 35)},
		{name: "reversed order", a: Pos(300, 100), b: Pos(100, 100)},
		{name: "odd sum", a: Pos(1, 2), b: Pos(4, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := ComputeGeometry(tt.a, tt.b, DefaultRadius)
			if !ok {
				t.Fatal("expected geometry to be defined")
			}

			wantX := float64(tt.a.X+tt.b.X) / 2
			wantY := float64(tt.a.Y+tt.b.Y) / 2
			if !near(g.Mid.X, wantX) || !near(g.Mid.Y, wantY) {
				t.Errorf("Mid = %v, want (%f, %f)", g.Mid, wantX, wantY)
			}
		})
	}
}

func TestComputeGeometry_EndpointsOnWheel(t *testing.T) {
	radii := []float64{1, 75, DefaultRadius, 400.5}
	pairs := [][2]HandPosition{
		{Pos(100, 100), Pos(300, 100)},
		{Pos(100, 100), Pos(100, 300)},
		{Pos(640, 0), Pos(0, 480)},
		{Pos(320, 240), Pos(321, 239)},
	}

	for _, radius := range radii {
		for _, p := range pairs {
			g, ok := ComputeGeometry(p[0], p[1], radius)
			if !ok {
				t.Fatalf("radius %f, %v: expected geometry to be defined", radius, p)
			}

			for name, pt := range map[string]r2.Vec{
				"RimA":       g.RimA,
				"RimB":       g.RimB,
				"IndicatorA": g.IndicatorA,
				"IndicatorB": g.IndicatorB,
			} {
				if d := r2.Norm(r2.Sub(pt, g.Mid)); math.Abs(d-radius) > 1e-6 {
					t.Errorf("radius %f, %v: %s is %f from midpoint", radius, p, name, d)
				}
			}

			rim := r2.Sub(g.RimA, g.RimB)
			ind := r2.Sub(g.IndicatorA, g.IndicatorB)
			if dot := r2.Dot(rim, ind); math.Abs(dot) > 1e-6 {
				t.Errorf("radius %f, %v: indicator not perpendicular to rim (dot %f)", radius, p, dot)
			}
		}
	}
}

func TestComputeGeometry_RawAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b HandPosition
		want float64
	}{
		{name: "right", a: Pos(100, 100), b: Pos(300, 100), want: 0},
		{name: "down", a: Pos(100, 100), b: Pos(100, 300), want: math.Pi / 2},
		{name: "left", a: Pos(300, 100), b: Pos(100, 100), want: math.Pi},
		{name: "up", a: Pos(100, 300), b: Pos(100, 100), want: -math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := ComputeGeometry(tt.a, tt.b, DefaultRadius)
			if !ok {
				t.Fatal("expected geometry to be defined")
			}
			if !near(g.Angle, tt.want) {
				t.Errorf("Angle = %f, want %f", g.Angle, tt.want)
			}
		})
	}

	t.Run("rim A points from hand 0 toward hand 1", func(t *testing.T) {
		g, _ := ComputeGeometry(Pos(100, 100), Pos(300, 100), 150)
		if !near(g.RimA.X, 350) || !near(g.RimA.Y, 100) {
			t.Errorf("RimA = %v, want (350, 100)", g.RimA)
		}
		if !near(g.RimB.X, 50) || !near(g.RimB.Y, 100) {
			t.Errorf("RimB = %v, want (50, 100)", g.RimB)
		}
		if !near(g.IndicatorA.X, 200) || !near(g.IndicatorA.Y, 250) {
			t.Errorf("IndicatorA = %v, want (200, 250)", g.IndicatorA)
		}
		if !near(g.IndicatorB.X, 200) || !near(g.IndicatorB.Y, -50) {
			t.Errorf("IndicatorB = %v, want (200, -50)", g.IndicatorB)
		}
	})
}

func TestComputeGeometry_Undefined(t *testing.T) {
	tests := []struct {
		name   string
		a, b   HandPosition
		radius float64
	}{
		{name: "first hand malformed", a: HandPosition{X: 10, Y: 10}, b: Pos(20, 20), radius: DefaultRadius},
		{name: "second hand malformed", a: Pos(10, 10), b: HandPosition{}, radius: DefaultRadius},
		{name: "NaN radius", a: Pos(10, 10), b: Pos(20, 20), radius: math.NaN()},
		{name: "infinite radius", a: Pos(10, 10), b: Pos(20, 20), radius: math.Inf(1)},
		{name: "zero radius", a: Pos(10, 10), b: Pos(20, 20), radius: 0},
		{name: "negative radius", a: Pos(10, 10), b: Pos(20, 20), radius: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ComputeGeometry(tt.a, tt.b, tt.radius); ok {
				t.Error("expected geometry to be undefined")
			}
		})
	}
}

func TestComputeGeometry_SamePoint(t *testing.T) {
	g, ok := ComputeGeometry(Pos(200, 200), Pos(200, 200), DefaultRadius)
	if !ok {
		t.Fatal("coincident hands still span a wheel")
	}
	if g.Angle != 0 {
		t.Errorf("Angle = %f, want 0", g.Angle)
	}
}

func TestMirroredAngle(t *testing.T) {
	tests := []struct {
		name  string
		a, b  HandPosition
		width int
		want  float64
	}{
		{name: "level", a: Pos(100, 100), b: Pos(300, 100), width: 640, want: 0},
		{name: "hand 1 below", a: Pos(100, 100), b: Pos(100, 300), width: 640, want: 90},
		{name: "hand 1 above", a: Pos(100, 300), b: Pos(100, 100), width: 640, want: -90},
		{name: "forty five", a: Pos(0, 0), b: Pos(100, 100), width: 1280, want: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MirroredAngle(tt.a, tt.b, tt.width); !near(got, tt.want) {
				t.Errorf("MirroredAngle() = %f, want %f", got, tt.want)
			}
		})
	}
}
