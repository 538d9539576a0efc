package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns queued results first, one per Detect call, then the fixed result.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is drained.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-frame results. A nil entry means "no hand this frame".
func (m *MockDetector) Queue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// offsets places every joint relative to an anchor point (the index fingertip).
type offsets [NumLandmarks][2]float64

func pose(x, y float64, o offsets) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	for i, d := range o {
		lm.Points[i] = Point3D{X: x + d[0], Y: y + d[1]}
	}
	return lm
}

// PointingLandmarks returns a hand with only the index finger extended upward,
// its tip at (x, y).
func PointingLandmarks(x, y float64) HandLandmarks {
	return pose(x, y, offsets{
		Wrist:     {-0.03, 0.35},
		ThumbCMC:  {0.02, 0.32},
		ThumbMCP:  {0.05, 0.28},
		ThumbIP:   {0.06, 0.24},
		ThumbTip:  {0.06, 0.20},
		IndexMCP:  {0, 0.18},
		IndexPIP:  {0, 0.10},
		IndexDIP:  {0, 0.05},
		IndexTip:  {0, 0},
		MiddleMCP: {-0.04, 0.19},
		MiddlePIP: {-0.04, 0.17},
		MiddleDIP: {-0.04, 0.20},
		MiddleTip: {-0.04, 0.22},
		RingMCP:   {-0.08, 0.20},
		RingPIP:   {-0.08, 0.18},
		RingDIP:   {-0.08, 0.21},
		RingTip:   {-0.08, 0.23},
		PinkyMCP:  {-0.11, 0.22},
		PinkyPIP:  {-0.11, 0.20},
		PinkyDIP:  {-0.11, 0.23},
		PinkyTip:  {-0.11, 0.25},
	})
}

// RetractedLandmarks returns a hand whose index fingertip at (x, y) has dropped
// below its knuckle: the pen-lift posture.
func RetractedLandmarks(x, y float64) HandLandmarks {
	return pose(x, y, offsets{
		Wrist:     {-0.03, 0.25},
		ThumbCMC:  {0.02, 0.22},
		ThumbMCP:  {0.05, 0.18},
		ThumbIP:   {0.06, 0.14},
		ThumbTip:  {0.07, 0.10},
		IndexMCP:  {0, -0.02},
		IndexPIP:  {0, -0.06},
		IndexDIP:  {0, -0.03},
		IndexTip:  {0, 0},
		MiddleMCP: {-0.04, 0.00},
		MiddlePIP: {-0.04, -0.02},
		MiddleDIP: {-0.04, 0.01},
		MiddleTip: {-0.04, 0.03},
		RingMCP:   {-0.08, 0.01},
		RingPIP:   {-0.08, -0.01},
		RingDIP:   {-0.08, 0.02},
		RingTip:   {-0.08, 0.04},
		PinkyMCP:  {-0.11, 0.03},
		PinkyPIP:  {-0.11, 0.01},
		PinkyDIP:  {-0.11, 0.04},
		PinkyTip:  {-0.11, 0.06},
	})
}

// OpenPalmLandmarks returns a hand with all four fingers extended upward and
// the thumb spread, index fingertip at (x, y).
func OpenPalmLandmarks(x, y float64) HandLandmarks {
	return pose(x, y, offsets{
		Wrist:     {-0.05, 0.40},
		ThumbCMC:  {0.02, 0.35},
		ThumbMCP:  {0.06, 0.30},
		ThumbIP:   {0.09, 0.24},
		ThumbTip:  {0.11, 0.18},
		IndexMCP:  {0, 0.22},
		IndexPIP:  {0, 0.12},
		IndexDIP:  {0, 0.06},
		IndexTip:  {0, 0},
		MiddleMCP: {-0.04, 0.22},
		MiddlePIP: {-0.04, 0.11},
		MiddleDIP: {-0.04, 0.04},
		MiddleTip: {-0.04, -0.02},
		RingMCP:   {-0.08, 0.23},
		RingPIP:   {-0.08, 0.13},
		RingDIP:   {-0.08, 0.06},
		RingTip:   {-0.08, 0.01},
		PinkyMCP:  {-0.12, 0.25},
		PinkyPIP:  {-0.12, 0.17},
		PinkyDIP:  {-0.12, 0.11},
		PinkyTip:  {-0.12, 0.06},
	})
}

// FistLandmarks returns a closed hand: every finger curled and the thumb tip
// resting next to the pinky tip. The index fingertip is at (x, y).
func FistLandmarks(x, y float64) HandLandmarks {
	return pose(x, y, offsets{
		Wrist:     {-0.03, 0.22},
		ThumbCMC:  {0.01, 0.19},
		ThumbMCP:  {0.00, 0.16},
		ThumbIP:   {-0.02, 0.14},
		ThumbTip:  {-0.04, 0.12},
		IndexMCP:  {0, -0.01},
		IndexPIP:  {0, -0.04},
		IndexDIP:  {0, -0.02},
		IndexTip:  {0, 0},
		MiddleMCP: {-0.02, 0.02},
		MiddlePIP: {-0.02, 0.00},
		MiddleDIP: {-0.02, 0.02},
		MiddleTip: {-0.02, 0.04},
		RingMCP:   {-0.04, 0.04},
		RingPIP:   {-0.04, 0.02},
		RingDIP:   {-0.04, 0.04},
		RingTip:   {-0.04, 0.06},
		PinkyMCP:  {-0.06, 0.08},
		PinkyPIP:  {-0.06, 0.06},
		PinkyDIP:  {-0.06, 0.08},
		PinkyTip:  {-0.06, 0.10},
	})
}
