package render

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	captionFont      = gocv.FontHersheySimplex
	captionScale     = 0.8
	captionThickness = 2
	captionPad       = 5
)

// Draw paints o onto frame in place.
func Draw(frame *gocv.Mat, o Overlay) {
	for _, h := range o.Hands {
		for _, c := range h.Connections {
			gocv.Line(frame, c.From, c.To, ConnectionColor, ConnectionThickness)
		}
		for _, p := range h.Points {
			gocv.Circle(frame, p, LandmarkRadius, LandmarkColor, -1)
		}
	}

	if o.Wheel != nil {
		gocv.Circle(frame, o.Wheel.Center, o.Wheel.Radius, WheelColor, WheelThickness)
		gocv.Line(frame, o.Wheel.Rim.From, o.Wheel.Rim.To, WheelColor, RimThickness)
	}
	if o.Indicator != nil {
		gocv.Line(frame, o.Indicator.From, o.Indicator.To, WheelColor, IndicatorThickness)
	}
	if o.Caption != "" {
		DrawMirroredText(frame, o.Caption, CaptionAnchor)
	}
}

// DrawMirroredText writes text centred on at, flipped horizontally so it
// reads correctly once the whole frame is mirrored for display. Parts that
// fall outside the frame are clipped.
func DrawMirroredText(frame *gocv.Mat, text string, at image.Point) {
	size := gocv.GetTextSize(text, captionFont, captionScale, captionThickness)
	w, h := size.X+2*captionPad, size.Y+2*captionPad

	origin := image.Pt(at.X-size.X/2, at.Y-size.Y/2)
	dst := image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h).
		Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if dst.Empty() {
		return
	}

	label := gocv.Zeros(h, w, gocv.MatTypeCV8UC3)
	defer label.Close()
	gocv.PutTextWithParams(&label, text, image.Pt(captionPad, size.Y+captionPad),
		captionFont, captionScale, CaptionColor, captionThickness, gocv.LineAA, false)

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(label, &flipped, 1)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(flipped, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	src := dst.Sub(origin)
	srcLabel := flipped.Region(src)
	defer srcLabel.Close()
	srcMask := mask.Region(src)
	defer srcMask.Close()
	dstFrame := frame.Region(dst)
	defer dstFrame.Close()

	srcLabel.CopyToWithMask(&dstFrame, srcMask)
}
