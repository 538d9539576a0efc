// Package app wires the camera, hand detector, drawing engine and outputs
// into the skywrite tick loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ayusman/skywrite/internal/capture"
	"github.com/ayusman/skywrite/internal/config"
	"github.com/ayusman/skywrite/internal/detector"
	"github.com/ayusman/skywrite/internal/engine"
	"github.com/ayusman/skywrite/internal/ocr"
	"github.com/ayusman/skywrite/internal/plugin"
	"github.com/ayusman/skywrite/internal/store"
)

// PluginTimeoutMs bounds one output plugin call.
const PluginTimeoutMs = 5000

// ErrAlreadyRunning is returned by Run when the loop is already running.
var ErrAlreadyRunning = errors.New("tick loop already running")

// Config holds the application settings and optional collaborators. Nil
// collaborators are built from Settings.
type Config struct {
	Settings config.Config
	Store    *store.Store

	Camera     capture.Camera
	Detector   detector.Detector
	Recognizer ocr.Recognizer
}

// Status is a point-in-time view of the app for the HTTP API and tray.
type Status struct {
	Enabled  bool         `json:"enabled"`
	Running  bool         `json:"running"`
	State    engine.State `json:"state"`
	FPS      int          `json:"fps"`
	Active   bool         `json:"active"`
	LastText string       `json:"lastText"`
}

// App runs the skywrite pipeline.
type App struct {
	config   Config
	settings config.Config

	camera     capture.Camera
	activity   *capture.ActivityDetector
	governor   *capture.RateGovernor
	detector   detector.Detector
	engine     *engine.Engine
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu          sync.RWMutex
	enabled     bool
	stopCh      chan struct{}
	latest      []byte
	lastText    string
	active      bool
	subscribers []func(engine.Event)
	outputs     sync.WaitGroup
}

// New builds an App. It fails only when the settings cannot produce an engine.
func New(cfg Config) (*App, error) {
	settings := cfg.Settings

	engCfg, err := settings.Engine()
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	recognizer := cfg.Recognizer
	if recognizer == nil {
		recognizer = ocr.NewTesseract(settings.OCR)
	}

	a := &App{
		config:     cfg,
		settings:   settings,
		camera:     cfg.Camera,
		activity:   capture.NewActivityDetector(settings.Camera.ActivityThreshold),
		governor:   capture.NewRateGovernor(settings.Camera.RateConfig),
		detector:   cfg.Detector,
		engine:     engine.New(engCfg, recognizer),
		pluginMgr:  plugin.NewManager(settings.PluginDir),
		pluginExec: plugin.NewExecutor(PluginTimeoutMs),
		enabled:    true,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(settings.Camera.Config)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(settings.Detector); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if cfg.Store != nil {
		a.enabled = cfg.Store.Settings().Bool(store.SettingEnabled, true)
		a.Subscribe(a.journal)
	}
	a.Subscribe(a.dispatchOutput)

	return a, nil
}

// DiscoverPlugins scans the plugin directory for output plugins.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	if name := a.settings.Output.Plugin; name != "" {
		if _, err := a.pluginMgr.Get(name); err != nil {
			log.Printf("Output plugin %q not found in %s", name, a.pluginMgr.PluginDir())
		}
	}
	return nil
}

// SetEnabled turns the pipeline on or off. A disabled pipeline leaves the
// camera untouched. The choice is persisted when a store is configured.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			log.Printf("Failed to persist enabled setting: %v", err)
		}
	}
}

// IsEnabled returns whether the pipeline is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Subscribe registers fn to receive every engine event, from ticks and
// manual overrides alike. fn runs on the publishing goroutine and must not
// block.
func (a *App) Subscribe(fn func(engine.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// ForceClear wipes the canvas and publishes the resulting event.
func (a *App) ForceClear() engine.Event {
	ev := a.engine.ForceClear()
	a.publish(ev)
	return ev
}

// ForceRecognize recognizes the current drawing, clears the canvas and
// publishes the resulting event.
func (a *App) ForceRecognize(ctx context.Context) engine.Event {
	ev := a.engine.ForceRecognize(ctx)
	a.publish(ev)
	return ev
}

// LatestFrame returns the last composited display frame as JPEG, or nil
// before the first tick.
func (a *App) LatestFrame() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// LastText returns the most recent non-empty recognized token.
func (a *App) LastText() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastText
}

// Status reports the current pipeline state.
func (a *App) Status() Status {
	a.mu.RLock()
	s := Status{
		Enabled:  a.enabled,
		Running:  a.stopCh != nil,
		FPS:      a.camera.FPS(),
		Active:   a.active,
		LastText: a.lastText,
	}
	a.mu.RUnlock()

	s.State = a.engine.State()
	return s
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. Call it before Run.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetRecognizer replaces the recognizer used for later recognitions.
func (a *App) SetRecognizer(r ocr.Recognizer) {
	a.engine.SetRecognizer(r)
}

// Snapshot returns a copy of the current drawing.
func (a *App) Snapshot() (image.Image, error) {
	return a.engine.Snapshot()
}

// Engine returns the drawing engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Close waits for in-flight output plugins and releases the detector,
// activity detector and canvas. Stop the loop first.
func (a *App) Close() error {
	a.outputs.Wait()

	a.activity.Close()
	var errs []error
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	if err := a.engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close engine: %w", err))
	}
	return errors.Join(errs...)
}
