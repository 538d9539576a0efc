// Package gesture turns per-frame hand landmarks into the discrete signals
// that drive drawing, and holds the bounded point buffers used while drawing.
package gesture

import (
	"math"

	"github.com/ayusman/skywrite/internal/detector"
)

// Thresholds holds the classification constants.
type Thresholds struct {
	// PinchDistance is the per-axis limit, in normalized coordinates, under
	// which thumb tip and pinky tip count as touching (a closed fist).
	PinchDistance float64 `yaml:"pinch_distance"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{PinchDistance: 0.05}
}

// Signals is the classifier output for one hand in one frame.
type Signals struct {
	Pointing        bool `json:"pointing"`
	ExtendedFingers int  `json:"extendedFingers"`
	Fist            bool `json:"fist"`
}

// Classify maps one hand to its gesture signals. It has no state.
func Classify(hand *detector.HandLandmarks, t Thresholds) Signals {
	if hand == nil {
		return Signals{}
	}
	return Signals{
		Pointing:        IsPointing(hand),
		ExtendedFingers: ExtendedFingers(hand),
		Fist:            IsFist(hand, t.PinchDistance),
	}
}

// IsPointing reports whether the index fingertip is above its knuckle in image space.
func IsPointing(hand *detector.HandLandmarks) bool {
	return hand.Points[detector.IndexTip].Y < hand.Points[detector.IndexPIP].Y
}

// IsRetracted reports whether the index fingertip has dropped below its knuckle.
// Equal heights are neither pointing nor retracted.
func IsRetracted(hand *detector.HandLandmarks) bool {
	return hand.Points[detector.IndexTip].Y > hand.Points[detector.IndexPIP].Y
}

// ExtendedFingers counts index, middle, ring and pinky fingers whose tip is
// above the matching knuckle. The thumb is never counted.
func ExtendedFingers(hand *detector.HandLandmarks) int {
	count := 0
	for _, joint := range detector.FingerJoints {
		if hand.Points[joint[0]].Y < hand.Points[joint[1]].Y {
			count++
		}
	}
	return count
}

// IsFist reports whether thumb tip and pinky tip are within limit of each
// other on both the x and y axes.
func IsFist(hand *detector.HandLandmarks, limit float64) bool {
	thumb := hand.Points[detector.ThumbTip]
	pinky := hand.Points[detector.PinkyTip]
	return math.Abs(thumb.X-pinky.X) < limit && math.Abs(thumb.Y-pinky.Y) < limit
}
