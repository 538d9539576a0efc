package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Activity detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// Activity is the result of comparing a frame with the one before it.
type Activity struct {
	Moving        bool
	ChangePercent float64
}

// ActivityDetector reports whether anything in view is moving, using frame
// differencing on blurred grayscale frames. It only steers the capture rate;
// frames are processed whether or not they show activity.
type ActivityDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewActivityDetector creates a detector that reports movement once more than
// threshold percent of the pixels change between frames.
func NewActivityDetector(threshold float64) *ActivityDetector {
	if threshold <= 0 {
		threshold = 1.0
	}
	return &ActivityDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Observe compares frame with the previous one. The first frame only sets the baseline.
func (d *ActivityDetector) Observe(frame *gocv.Mat) Activity {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Activity{}
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !d.initialized || blurred.Rows() != d.prevGray.Rows() || blurred.Cols() != d.prevGray.Cols() {
		blurred.CopyTo(&d.prevGray)
		d.initialized = true
		return Activity{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&d.prevGray)

	return Activity{Moving: changed > d.threshold, ChangePercent: changed}
}

// Threshold returns the change percentage that counts as movement.
func (d *ActivityDetector) Threshold() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.threshold
}

// Reset forgets the baseline frame.
func (d *ActivityDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
}

// Close releases resources used by the detector.
func (d *ActivityDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
}

func (d *ActivityDetector) release() {
	if !d.prevGray.Empty() {
		d.prevGray.Close()
		d.prevGray = gocv.NewMat()
	}
	d.initialized = false
}

// RateConfig controls capture-rate switching.
type RateConfig struct {
	IdleFPS   int           `yaml:"idle_fps"`
	ActiveFPS int           `yaml:"active_fps"`
	IdleAfter time.Duration `yaml:"idle_after"`
}

// DefaultRateConfig returns 5 FPS at rest, 15 FPS while active, and a two second fall-back.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		IdleFPS:   5,
		ActiveFPS: 15,
		IdleAfter: 2 * time.Second,
	}
}

// RateGovernor switches between the idle and active frame rates. A visible
// hand keeps it active as much as frame activity does.
type RateGovernor struct {
	config     RateConfig
	active     bool
	lastActive time.Time
}

// NewRateGovernor creates a governor that starts in idle mode.
func NewRateGovernor(config RateConfig) *RateGovernor {
	def := DefaultRateConfig()
	if config.IdleFPS <= 0 {
		config.IdleFPS = def.IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = def.ActiveFPS
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = def.IdleAfter
	}
	return &RateGovernor{config: config}
}

// Update records whether this tick was busy and returns the frame rate to use.
// changed is true when the mode flipped on this call.
func (g *RateGovernor) Update(busy bool, now time.Time) (fps int, changed bool) {
	switch {
	case busy:
		g.lastActive = now
		if !g.active {
			g.active = true
			changed = true
		}
	case g.active && now.Sub(g.lastActive) > g.config.IdleAfter:
		g.active = false
		changed = true
	}
	return g.FPS(), changed
}

// Active reports whether the governor is in active mode.
func (g *RateGovernor) Active() bool {
	return g.active
}

// FPS returns the frame rate for the current mode.
func (g *RateGovernor) FPS() int {
	if g.active {
		return g.config.ActiveFPS
	}
	return g.config.IdleFPS
}
