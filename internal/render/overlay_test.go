package render

import (
	"image"
	"testing"

	"github.com/ayusman/handwheel/internal/detector"
	"github.com/ayusman/handwheel/internal/steer"
)

func wheel(t *testing.T, ax, ay, bx, by int) steer.Geometry {
	t.Helper()
	g, ok := steer.ComputeGeometry(steer.Pos(ax, ay), steer.Pos(bx, by), steer.DefaultRadius)
	if !ok {
		t.Fatal("geometry undefined")
	}
	return g
}

func TestIndicatorEnd(t *testing.T) {
	// Level hands: indicator A points down the screen, B up.
	g := wheel(t, 100, 100, 300, 100)

	tests := []struct {
		cmd    steer.Command
		want   image.Point
		wantOK bool
	}{
		{steer.Left, image.Pt(200, 250), true},
		{steer.Right, image.Pt(200, -50), true},
		{steer.Forward, image.Pt(200, 250), true},
		{steer.Reverse, image.Point{}, false},
		{steer.Idle, image.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			end, ok := IndicatorEnd(tt.cmd, g)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && point(end) != tt.want {
				t.Errorf("end = %v, want %v", point(end), tt.want)
			}
		})
	}
}

func TestIndicatorEnd_ForwardPicksLowerEndpoint(t *testing.T) {
	// Swapped level hands flip the spoke directions.
	g := wheel(t, 300, 100, 100, 100)

	end, _ := IndicatorEnd(steer.Forward, g)
	if got := point(end); got != image.Pt(200, 250) {
		t.Errorf("end = %v, want the lower endpoint (200,250)", got)
	}
}

func TestBuild(t *testing.T) {
	t.Run("no wheel without geometry", func(t *testing.T) {
		hands := []detector.HandLandmarks{detector.HandAt(320, 400, 640, 480)}
		o := Build(hands, nil, steer.Reverse, steer.DefaultRadius, 640, 480)

		if o.Wheel != nil || o.Indicator != nil {
			t.Error("expected no wheel or indicator")
		}
		if o.Caption != "Reverse" {
			t.Errorf("caption = %q, want Reverse", o.Caption)
		}
		if len(o.Hands) != 1 {
			t.Fatalf("expected 1 skeleton, got %d", len(o.Hands))
		}
		if len(o.Hands[0].Points) != detector.NumLandmarks {
			t.Errorf("expected all landmarks visible, got %d", len(o.Hands[0].Points))
		}
		if len(o.Hands[0].Connections) != len(detector.HandConnections) {
			t.Errorf("expected all connections, got %d", len(o.Hands[0].Connections))
		}
	})

	t.Run("wheel with geometry", func(t *testing.T) {
		g := wheel(t, 100, 100, 300, 100)
		o := Build(detector.Wheel(100, 100, 300, 100, 640, 480), &g, steer.Forward, 150, 640, 480)

		if o.Wheel == nil {
			t.Fatal("expected wheel")
		}
		if o.Wheel.Center != image.Pt(200, 100) || o.Wheel.Radius != 150 {
			t.Errorf("wheel = %+v", o.Wheel)
		}
		if o.Wheel.Rim != (Segment{From: image.Pt(350, 100), To: image.Pt(50, 100)}) {
			t.Errorf("rim = %+v", o.Wheel.Rim)
		}
		if o.Indicator == nil || o.Indicator.To != o.Wheel.Center {
			t.Errorf("indicator = %+v", o.Indicator)
		}
		if o.Caption != "Keep straight" {
			t.Errorf("caption = %q", o.Caption)
		}
	})

	t.Run("idle has no caption", func(t *testing.T) {
		o := Build(nil, nil, steer.Idle, 150, 640, 480)
		if o.Caption != "" || len(o.Hands) != 0 {
			t.Errorf("unexpected overlay %+v", o)
		}
	})

	t.Run("landmarks outside the frame are hidden", func(t *testing.T) {
		// Fingers of a hand at the top edge extend above the frame.
		o := Build([]detector.HandLandmarks{detector.HandAt(320, 0, 640, 480)}, nil, steer.Reverse, 150, 640, 480)
		if n := len(o.Hands[0].Points); n != 1 {
			t.Errorf("expected only the wrist visible, got %d points", n)
		}
		if n := len(o.Hands[0].Connections); n != 0 {
			t.Errorf("expected no connections, got %d", n)
		}
	})
}
