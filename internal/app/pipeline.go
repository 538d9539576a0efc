package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/skywrite/internal/canvas"
	"github.com/ayusman/skywrite/internal/capture"
	"github.com/ayusman/skywrite/internal/detector"
	"github.com/ayusman/skywrite/internal/engine"
)

// Run opens the camera and ticks until ctx is cancelled or Stop is called,
// both of which return nil. A camera that stops producing frames ends the
// loop with an error wrapping capture.ErrStreamEnded. The tick rate follows
// the rate governor: idle until a hand or frame activity is seen, active
// until IdleAfter passes without either.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	stopCh := make(chan struct{})
	a.stopCh = stopCh
	cam := a.camera
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.stopCh = nil
		a.mu.Unlock()
	}()

	if !cam.IsOpen() {
		if err := cam.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
	}
	defer func() {
		if err := cam.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	fps := a.governor.FPS()
	cam.SetFPS(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Println("Tick loop started")
	defer log.Println("Tick loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		case <-ticker.C:
			if err := a.Step(ctx); err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			if next := a.governor.FPS(); next != fps {
				fps = next
				ticker.Reset(time.Second / time.Duration(fps))
			}
		}
	}
}

// Stop asks a running loop to return at the next tick boundary.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
}

// Step runs one tick: read a frame, mirror it, update the frame rate,
// detect hands, advance the engine, render the display frame and publish
// the engine's events. Only frame-source errors are returned; a detector
// failure is logged and the tick proceeds as if no hand were visible.
func (a *App) Step(ctx context.Context) error {
	if !a.IsEnabled() {
		return nil
	}

	a.mu.RLock()
	cam, det := a.camera, a.detector
	a.mu.RUnlock()

	frame, err := cam.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	if a.settings.Camera.Mirror {
		capture.Mirror(frame)
	}
	activity := a.activity.Observe(frame)

	var hands []detector.HandLandmarks
	if det != nil {
		hands, err = det.Detect(frame)
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			hands = nil
		}
	}

	res, display := a.engine.TickComposite(ctx, hands, *frame, a.settings.Canvas.Opacity)
	defer display.Close()

	fps, changed := a.governor.Update(activity.Moving || res.HandPresent, time.Now())
	if changed {
		cam.SetFPS(fps)
		if a.governor.Active() {
			log.Println("Switched to active mode")
		} else {
			log.Println("Switched to idle mode")
		}
	}

	jpeg, err := a.render(&display, hands, res)
	if err != nil {
		log.Printf("Error rendering frame: %v", err)
	}

	a.mu.Lock()
	a.active = a.governor.Active()
	if jpeg != nil {
		a.latest = jpeg
	}
	a.mu.Unlock()

	for _, ev := range res.Events {
		a.publish(ev)
	}
	return nil
}

// render draws the overlays on the composited display frame and returns it
// as JPEG.
func (a *App) render(display *gocv.Mat, hands []detector.HandLandmarks, res engine.Result) ([]byte, error) {
	if a.settings.Canvas.Skeleton && len(hands) > 0 {
		canvas.DrawSkeleton(display, &hands[0])
	}
	canvas.DrawLabel(display, a.label(res.State))

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *display)
	if err != nil {
		return nil, fmt.Errorf("encode display frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory that Close frees.
	return append([]byte(nil), buf.GetBytes()...), nil
}

func (a *App) label(state engine.State) string {
	if last := a.LastText(); last != "" {
		return fmt.Sprintf("%s | last: %s", state, last)
	}
	return state.String()
}
