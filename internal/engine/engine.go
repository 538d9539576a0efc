// Package engine interprets hand landmarks frame by frame: it decides when
// ink is laid down, when the canvas is wiped by a waved open hand, and when a
// closed fist asks for the drawing to be recognized.
package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/skywrite/internal/canvas"
	"github.com/ayusman/skywrite/internal/detector"
	"github.com/ayusman/skywrite/internal/gesture"
	"github.com/ayusman/skywrite/internal/ocr"
)

// ErrNoRecognizer is reported in a Recognized event when no recognizer is set.
var ErrNoRecognizer = errors.New("no recognizer configured")

// State is the stroke state after a tick.
type State int

const (
	// Idle means no hand, or a hand that is neither drawing nor pulled back.
	Idle State = iota
	// Writing means ink was laid down this tick.
	Writing
	// Paused means the index finger is retracted and writing is latched off.
	Paused
)

func (s State) String() string {
	switch s {
	case Writing:
		return "writing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText lets State appear as a word in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the drawing and gesture constants.
type Config struct {
	Width       int
	Height      int
	Ink         color.RGBA
	StrokeWidth int

	Thresholds      gesture.Thresholds
	StrokeCapacity  int
	MotionCapacity  int
	MotionThreshold float64

	// ClearCooldown is the minimum time between two gesture clears.
	ClearCooldown time.Duration
	// ClearFingerCount is how many non-thumb fingers must be extended to wave the canvas clear.
	ClearFingerCount int
	// FistDebounce recognizes once per fist rather than on every frame the fist is held.
	FistDebounce bool
}

// DefaultConfig returns a 640x480 canvas with white 5px ink and the standard gesture constants.
func DefaultConfig() Config {
	return Config{
		Width:            canvas.DefaultWidth,
		Height:           canvas.DefaultHeight,
		Ink:              color.RGBA{R: 255, G: 255, B: 255, A: 255},
		StrokeWidth:      canvas.DefaultStrokeWidth,
		Thresholds:       gesture.DefaultThresholds(),
		StrokeCapacity:   gesture.DefaultStrokeCapacity,
		MotionCapacity:   gesture.DefaultMotionCapacity,
		MotionThreshold:  gesture.DefaultMotionThreshold,
		ClearCooldown:    1500 * time.Millisecond,
		ClearFingerCount: 4,
		FistDebounce:     true,
	}
}

// Result describes what one tick did.
type Result struct {
	State       State           `json:"state"`
	HandPresent bool            `json:"handPresent"`
	Signals     gesture.Signals `json:"signals"`
	Segments    int             `json:"segments"`
	Events      []Event         `json:"events,omitempty"`
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for cooldown tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine owns the canvas and the stroke state machine. A single mutex
// serializes ticks, manual overrides and compositing.
type Engine struct {
	mu         sync.Mutex
	config     Config
	canvas     *canvas.Canvas
	smoother   *gesture.StrokeSmoother
	gate       *gesture.MotionGate
	recognizer ocr.Recognizer
	now        func() time.Time

	state      State
	pauseLatch bool
	fistHeld   bool
	lastClear  time.Time
}

// New creates an engine with a blank canvas. recognizer may be nil.
func New(config Config, recognizer ocr.Recognizer, opts ...Option) *Engine {
	def := DefaultConfig()
	if config.StrokeWidth <= 0 {
		config.StrokeWidth = def.StrokeWidth
	}
	if config.ClearFingerCount <= 0 {
		config.ClearFingerCount = def.ClearFingerCount
	}
	if config.Thresholds.PinchDistance <= 0 {
		config.Thresholds = def.Thresholds
	}

	e := &Engine{
		config:     config,
		canvas:     canvas.New(config.Width, config.Height),
		smoother:   gesture.NewStrokeSmoother(config.StrokeCapacity),
		gate:       gesture.NewMotionGate(config.MotionCapacity, config.MotionThreshold),
		recognizer: recognizer,
		now:        time.Now,
	}
	e.config.Width = e.canvas.Width()
	e.config.Height = e.canvas.Height()

	for _, opt := range opts {
		opt(e)
	}
	// The cooldown runs from startup, so a hand raised while the camera
	// settles cannot wipe the canvas straight away.
	e.lastClear = e.now()
	return e
}

// Tick processes the hands detected in one frame. Only the first hand is
// interpreted. A fist may block the tick while the recognizer runs.
func (e *Engine) Tick(ctx context.Context, hands []detector.HandLandmarks) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked(ctx, hands)
}

// TickComposite runs Tick and blends the resulting canvas over base without
// releasing the engine lock in between, so a manual override cannot land
// between the tick and the frame that shows it. The caller closes the Mat.
func (e *Engine) TickComposite(ctx context.Context, hands []detector.HandLandmarks, base gocv.Mat, opacity float64) (Result, gocv.Mat) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.tickLocked(ctx, hands)
	return res, e.canvas.CompositeOver(base, opacity)
}

func (e *Engine) tickLocked(ctx context.Context, hands []detector.HandLandmarks) Result {
	if len(hands) == 0 {
		e.smoother.Reset()
		e.state = Idle
		e.fistHeld = false
		return Result{State: Idle}
	}

	now := e.now()
	hand := &hands[0]
	signals := gesture.Classify(hand, e.config.Thresholds)
	pen := hand.PenPoint(e.config.Width, e.config.Height)
	res := Result{HandPresent: true, Signals: signals}

	// The motion history follows the hand whatever the stroke state.
	e.gate.Observe(pen)

	drew := false
	if signals.Pointing && !e.pauseLatch {
		e.smoother.Push(pen)
		for _, seg := range e.smoother.Segments() {
			e.canvas.DrawLine(seg.From, seg.To, e.config.Ink, e.config.StrokeWidth)
			res.Segments++
		}
		drew = true
	} else {
		e.smoother.Reset()
	}

	e.pauseLatch = gesture.IsRetracted(hand)

	switch {
	case drew:
		e.state = Writing
	case e.pauseLatch:
		e.state = Paused
	default:
		e.state = Idle
	}
	res.State = e.state

	if signals.ExtendedFingers == e.config.ClearFingerCount && e.cooldownElapsed(now) && e.gate.HasSignificantMotion() {
		e.clearLocked()
		e.lastClear = now
		res.Events = append(res.Events, newEvent(EventCleared, SourceGesture, now))
	}

	if signals.Fist {
		if !e.config.FistDebounce || !e.fistHeld {
			res.Events = append(res.Events, e.recognizeLocked(ctx, SourceGesture, now))
		}
		e.fistHeld = true
	} else {
		e.fistHeld = false
	}

	return res
}

// ForceClear wipes the canvas on request. It does not restart the gesture cooldown.
func (e *Engine) ForceClear() Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearLocked()
	return newEvent(EventCleared, SourceManual, e.now())
}

// ForceRecognize recognizes and clears the canvas on request.
func (e *Engine) ForceRecognize(ctx context.Context) Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.recognizeLocked(ctx, SourceManual, e.now())
}

func (e *Engine) cooldownElapsed(now time.Time) bool {
	return now.Sub(e.lastClear) >= e.config.ClearCooldown
}

// clearLocked wipes the canvas and ends the current stroke so that buffered
// segments are not painted back on the next tick.
func (e *Engine) clearLocked() {
	e.canvas.Clear()
	e.smoother.Reset()
}

// recognizeLocked hands a snapshot to the recognizer and then clears the
// canvas, whatever the outcome.
func (e *Engine) recognizeLocked(ctx context.Context, source Source, now time.Time) Event {
	ev := newEvent(EventRecognized, source, now)

	text, err := e.recognize(ctx)
	if err != nil {
		ev.Err = err.Error()
	} else {
		ev.Text = text
	}

	e.clearLocked()
	return ev
}

func (e *Engine) recognize(ctx context.Context) (string, error) {
	if e.recognizer == nil {
		return "", ErrNoRecognizer
	}
	snap, err := e.canvas.Snapshot()
	if err != nil {
		return "", err
	}
	return e.recognizer.Recognize(ctx, snap)
}

// SetRecognizer replaces the recognizer used by later recognitions.
func (e *Engine) SetRecognizer(r ocr.Recognizer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recognizer = r
}

// Composite blends the canvas over a camera frame for display.
// The caller closes the returned Mat.
func (e *Engine) Composite(base gocv.Mat, opacity float64) gocv.Mat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.CompositeOver(base, opacity)
}

// Snapshot returns an independent copy of the canvas.
func (e *Engine) Snapshot() (image.Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.Snapshot()
}

// InkPixels counts inked canvas pixels.
func (e *Engine) InkPixels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.InkPixels()
}

// State returns the stroke state after the last tick.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PauseLatched reports whether writing is latched off by a retracted finger.
func (e *Engine) PauseLatched() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauseLatch
}

// StrokeLen returns the number of points buffered for the current stroke.
func (e *Engine) StrokeLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.smoother.Len()
}

// Size returns the canvas size in pixels.
func (e *Engine) Size() (width, height int) {
	return e.config.Width, e.config.Height
}

// Close releases the canvas.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.Close()
}
