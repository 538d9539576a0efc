package gesture

import "image"

// DefaultStrokeCapacity is the number of recent pen points kept for a stroke.
const DefaultStrokeCapacity = 10

// Segment is one line piece between two consecutive pen points.
type Segment struct {
	From image.Point
	To   image.Point
}

// StrokeSmoother keeps the most recent pen points of the current stroke.
// Only consecutive pairs are ever drawn, so a lone noisy point never
// becomes an isolated dot.
type StrokeSmoother struct {
	points   []image.Point
	capacity int
}

// NewStrokeSmoother creates a smoother holding at most capacity points.
// A non-positive capacity falls back to DefaultStrokeCapacity.
func NewStrokeSmoother(capacity int) *StrokeSmoother {
	if capacity <= 0 {
		capacity = DefaultStrokeCapacity
	}
	return &StrokeSmoother{
		points:   make([]image.Point, 0, capacity),
		capacity: capacity,
	}
}

// Push appends p, evicting the oldest point when the buffer is full.
func (s *StrokeSmoother) Push(p image.Point) {
	if len(s.points) >= s.capacity {
		copy(s.points, s.points[1:])
		s.points = s.points[:s.capacity-1]
	}
	s.points = append(s.points, p)
}

// Segments returns the line pieces joining each buffered point to its
// predecessor, oldest first. Fewer than two points yields none.
func (s *StrokeSmoother) Segments() []Segment {
	if len(s.points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(s.points)-1)
	for i := 1; i < len(s.points); i++ {
		segs = append(segs, Segment{From: s.points[i-1], To: s.points[i]})
	}
	return segs
}

// Points returns a copy of the buffered points, oldest first.
func (s *StrokeSmoother) Points() []image.Point {
	out := make([]image.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of buffered points.
func (s *StrokeSmoother) Len() int {
	return len(s.points)
}

// Cap returns the buffer capacity.
func (s *StrokeSmoother) Cap() int {
	return s.capacity
}

// Reset ends the current stroke.
func (s *StrokeSmoother) Reset() {
	s.points = s.points[:0]
}
