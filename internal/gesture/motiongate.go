package gesture

import (
	"image"
	"math"
)

// Motion gate defaults.
const (
	DefaultMotionCapacity  = 20
	DefaultMotionThreshold = 50.0
)

// MotionGate remembers recent pen positions and tells whether the hand has
// been moving enough for an open palm to count as a deliberate wave.
type MotionGate struct {
	history   []image.Point
	capacity  int
	threshold float64
}

// NewMotionGate creates a gate over at most capacity points that opens when
// the summed per-axis standard deviation, in pixels, exceeds threshold.
func NewMotionGate(capacity int, threshold float64) *MotionGate {
	if capacity <= 0 {
		capacity = DefaultMotionCapacity
	}
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionGate{
		history:   make([]image.Point, 0, capacity),
		capacity:  capacity,
		threshold: threshold,
	}
}

// Observe records p, evicting the oldest point when the history is full.
func (g *MotionGate) Observe(p image.Point) {
	if len(g.history) >= g.capacity {
		copy(g.history, g.history[1:])
		g.history = g.history[:g.capacity-1]
	}
	g.history = append(g.history, p)
}

// Spread returns the population standard deviation of x plus that of y.
// An empty history has zero spread.
func (g *MotionGate) Spread() float64 {
	n := float64(len(g.history))
	if n == 0 {
		return 0
	}

	var sumX, sumY float64
	for _, p := range g.history {
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}
	meanX, meanY := sumX/n, sumY/n

	var varX, varY float64
	for _, p := range g.history {
		dx := float64(p.X) - meanX
		dy := float64(p.Y) - meanY
		varX += dx * dx
		varY += dy * dy
	}
	return math.Sqrt(varX/n) + math.Sqrt(varY/n)
}

// HasSignificantMotion reports whether Spread exceeds the threshold.
func (g *MotionGate) HasSignificantMotion() bool {
	return g.Spread() > g.threshold
}

// Len returns the number of remembered points.
func (g *MotionGate) Len() int {
	return len(g.history)
}

// Threshold returns the spread the gate must exceed.
func (g *MotionGate) Threshold() float64 {
	return g.threshold
}

// Reset forgets all remembered points.
func (g *MotionGate) Reset() {
	g.history = g.history[:0]
}
