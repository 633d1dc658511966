package steer

import "math"

// DefaultThresholdDeg is the mirrored angle, in degrees, beyond which the
// wheel counts as turned.
const DefaultThresholdDeg = 30.0

// Command is the driving decision for one frame.
type Command int

const (
	// Idle issues no key changes; whatever is held stays held.
	Idle Command = iota
	Forward
	Left
	Right
	Reverse
)

var commandNames = map[Command]string{
	Idle:    "IDLE",
	Forward: "FORWARD",
	Left:    "LEFT",
	Right:   "RIGHT",
	Reverse: "REVERSE",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Caption returns the text shown to the user for the command.
// Captions are worded for the mirrored view.
func (c Command) Caption() string {
	switch c {
	case Forward:
		return "Keep straight"
	case Left:
		return "Turn left"
	case Right:
		return "Turn right"
	case Reverse:
		return "Reverse"
	default:
		return ""
	}
}

// Direction returns the direction key the command holds.
// Idle has no direction.
func (c Command) Direction() (Direction, bool) {
	switch c {
	case Forward:
		return DirForward, true
	case Left:
		return DirLeft, true
	case Right:
		return DirRight, true
	case Reverse:
		return DirReverse, true
	default:
		return 0, false
	}
}

// Classifier maps hand positions to a Command.
type Classifier struct {
	ThresholdDeg float64
}

// NewClassifier returns a Classifier with the default 30 degree threshold.
func NewClassifier() Classifier {
	return Classifier{ThresholdDeg: DefaultThresholdDeg}
}

// Classify decides the command for one frame.
//
// Zero or one hand means reverse. Two hands with a defined geometry steer by
// the mirrored angle, which is recomputed here from the positions rather than
// taken from geom.Angle: geom describes the wheel as drawn on the raw frame,
// the mirrored angle describes it as the user sees it. Two hands without a
// geometry, or more than two hands, give Idle.
func (c Classifier) Classify(hands []HandPosition, geom *Geometry, frameWidth int) Command {
	switch {
	case len(hands) < 2:
		return Reverse
	case len(hands) > 2 || geom == nil:
		return Idle
	}

	deg := MirroredAngle(hands[0], hands[1], frameWidth)
	if math.Abs(deg) > c.ThresholdDeg {
		if deg > 0 {
			return Left
		}
		return Right
	}
	return Forward
}

// Classify uses the default threshold.
func Classify(hands []HandPosition, geom *Geometry, frameWidth int) Command {
	return NewClassifier().Classify(hands, geom, frameWidth)
}
