package detector

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Detector kinds accepted by New.
const (
	KindMediaPipe = "mediapipe"
	KindMock      = "mock"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks
	// in detector order. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the settings the steering wheel needs: two hands at
// 0.5 confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// New creates the detector named by kind.
func New(kind string, cfg Config) (Detector, error) {
	switch kind {
	case KindMediaPipe, "":
		return NewMediaPipeDetector(cfg)
	case KindMock:
		return NewMockDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector %q", kind)
	}
}
