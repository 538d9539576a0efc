package gesture

import (
	"image"
	"testing"
)

func TestStrokeSmoother_Push(t *testing.T) {
	t.Run("length grows up to capacity", func(t *testing.T) {
		s := NewStrokeSmoother(10)
		for i := 1; i <= 15; i++ {
			s.Push(image.Pt(i, i))
			want := min(i, 10)
			if s.Len() != want {
				t.Fatalf("after %d pushes expected length %d, got %d", i, want, s.Len())
			}
		}
	})

	t.Run("eleventh point evicts the oldest", func(t *testing.T) {
		s := NewStrokeSmoother(10)
		for i := 0; i < 11; i++ {
			s.Push(image.Pt(i*10, 0))
		}

		points := s.Points()
		if len(points) != 10 {
			t.Fatalf("expected 10 points, got %d", len(points))
		}
		if points[0] != image.Pt(10, 0) {
			t.Errorf("expected oldest point (0,0) evicted, first is %v", points[0])
		}
		if points[9] != image.Pt(100, 0) {
			t.Errorf("expected newest point last, got %v", points[9])
		}
	})

	t.Run("non-positive capacity uses default", func(t *testing.T) {
		if got := NewStrokeSmoother(0).Cap(); got != DefaultStrokeCapacity {
			t.Errorf("expected capacity %d, got %d", DefaultStrokeCapacity, got)
		}
	})
}

func TestStrokeSmoother_Segments(t *testing.T) {
	t.Run("single point yields no segment", func(t *testing.T) {
		s := NewStrokeSmoother(10)
		s.Push(image.Pt(5, 5))
		if segs := s.Segments(); len(segs) != 0 {
			t.Errorf("expected no segments, got %v", segs)
		}
	})

	t.Run("consecutive pairs", func(t *testing.T) {
		s := NewStrokeSmoother(10)
		pts := []image.Point{{0, 0}, {10, 0}, {20, 5}, {30, 5}, {40, 10}}
		for _, p := range pts {
			s.Push(p)
		}

		segs := s.Segments()
		if len(segs) != 4 {
			t.Fatalf("expected 4 segments, got %d", len(segs))
		}
		for i, seg := range segs {
			if seg.From != pts[i] || seg.To != pts[i+1] {
				t.Errorf("segment %d = %v, want %v -> %v", i, seg, pts[i], pts[i+1])
			}
		}
	})

	t.Run("full buffer yields capacity minus one", func(t *testing.T) {
		s := NewStrokeSmoother(10)
		for i := 0; i < 25; i++ {
			s.Push(image.Pt(i, 0))
		}
		if got := len(s.Segments()); got != 9 {
			t.Errorf("expected 9 segments, got %d", got)
		}
	})
}

func TestStrokeSmoother_Reset(t *testing.T) {
	s := NewStrokeSmoother(10)
	s.Push(image.Pt(1, 1))
	s.Push(image.Pt(2, 2))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("expected empty buffer after reset, got %d", s.Len())
	}

	// A point pushed after reset does not connect to anything before it.
	s.Push(image.Pt(100, 100))
	if segs := s.Segments(); len(segs) != 0 {
		t.Errorf("expected no bridging segment after reset, got %v", segs)
	}
}

func TestStrokeSmoother_PointsIsCopy(t *testing.T) {
	s := NewStrokeSmoother(10)
	s.Push(image.Pt(1, 1))

	pts := s.Points()
	pts[0] = image.Pt(99, 99)

	if s.Points()[0] != image.Pt(1, 1) {
		t.Error("modifying Points() result should not affect the buffer")
	}
}
