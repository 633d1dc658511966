package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	err      error
	sequence [][]HandLandmarks
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetSequence queues per-frame results. Each Detect call consumes one entry;
// once the queue is empty Detect falls back to the SetHands value.
func (m *MockDetector) SetSequence(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append([][]HandLandmarks(nil), frames...)
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// handShape is an open right hand relative to its wrist, in normalized units.
var handShape = [NumLandmarks]Point3D{
	Wrist:     {0, 0, 0},
	ThumbCMC:  {0.05, -0.05, 0.02},
	ThumbMCP:  {0.12, -0.10, 0.03},
	ThumbIP:   {0.18, -0.15, 0.03},
	ThumbTip:  {0.23, -0.20, 0.03},
	IndexMCP:  {0.05, -0.12, 0},
	IndexPIP:  {0.07, -0.25, 0},
	IndexDIP:  {0.08, -0.35, 0},
	IndexTip:  {0.08, -0.45, 0},
	MiddleMCP: {0, -0.14, 0},
	MiddlePIP: {0, -0.28, 0},
	MiddleDIP: {0, -0.40, 0},
	MiddleTip: {0, -0.52, 0},
	RingMCP:   {-0.05, -0.12, 0},
	RingPIP:   {-0.07, -0.25, 0},
	RingDIP:   {-0.08, -0.35, 0},
	RingTip:   {-0.08, -0.45, 0},
	PinkyMCP:  {-0.10, -0.10, 0},
	PinkyPIP:  {-0.13, -0.20, 0},
	PinkyDIP:  {-0.15, -0.30, 0},
	PinkyTip:  {-0.16, -0.38, 0},
}

// HandAt returns an open hand whose wrist maps to pixel (x, y) in a
// width x height frame. Finger landmarks are scaled down around the wrist
// and may fall outside the frame near its edges.
func HandAt(x, y, width, height int) HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95}

	wx := (float64(x) + 0.5) / float64(width)
	wy := (float64(y) + 0.5) / float64(height)
	const scale = 0.3
	for i, p := range handShape {
		lm.Points[i] = Point3D{X: wx + p.X*scale, Y: wy + p.Y*scale, Z: p.Z}
	}
	return lm
}

// Wheel returns two hands at pixel positions a and b, in that order.
func Wheel(ax, ay, bx, by, width, height int) []HandLandmarks {
	return []HandLandmarks{HandAt(ax, ay, width, height), HandAt(bx, by, width, height)}
}
