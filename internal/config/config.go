// Package config loads skywrite settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ayusman/skywrite/internal/canvas"
	"github.com/ayusman/skywrite/internal/capture"
	"github.com/ayusman/skywrite/internal/detector"
	"github.com/ayusman/skywrite/internal/engine"
	"github.com/ayusman/skywrite/internal/gesture"
	"github.com/ayusman/skywrite/internal/ocr"
)

// Config is the full application configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	PluginDir string `yaml:"plugin_dir"`
	Tray      bool   `yaml:"tray"`

	Camera   Camera          `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Canvas   Canvas          `yaml:"canvas"`
	Gestures Gestures        `yaml:"gestures"`
	OCR      ocr.Config      `yaml:"ocr"`
	Server   Server          `yaml:"server"`
	Output   Output          `yaml:"output"`
}

// Camera selects the capture device and its frame-rate policy.
type Camera struct {
	capture.Config     `yaml:",inline"`
	capture.RateConfig `yaml:",inline"`

	// ActivityThreshold is the percentage of changed pixels that counts as activity.
	ActivityThreshold float64 `yaml:"activity_threshold"`
}

// Canvas sets the ink raster and how it is shown over the camera image.
type Canvas struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Ink         string  `yaml:"ink"`
	StrokeWidth int     `yaml:"stroke_width"`
	Opacity     float64 `yaml:"opacity"`
	Skeleton    bool    `yaml:"skeleton"`
}

// Gestures holds the gesture thresholds and buffer sizes.
type Gestures struct {
	PinchDistance    float64       `yaml:"pinch_distance"`
	MotionThreshold  float64       `yaml:"motion_threshold"`
	ClearCooldown    time.Duration `yaml:"clear_cooldown"`
	ClearFingerCount int           `yaml:"clear_finger_count"`
	StrokeBuffer     int           `yaml:"stroke_buffer"`
	MotionHistory    int           `yaml:"motion_history"`
	FistDebounce     bool          `yaml:"fist_debounce"`
}

// Server configures the local HTTP interface.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Output names a plugin action that receives every recognized token.
// An empty Plugin disables output.
type Output struct {
	Plugin string `yaml:"plugin"`
	Action string `yaml:"action"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".skywrite")
	eng := engine.DefaultConfig()

	return Config{
		DataDir:   base,
		PluginDir: filepath.Join(base, "plugins"),
		Tray:      true,
		Camera: Camera{
			Config:            capture.DefaultConfig(),
			RateConfig:        capture.DefaultRateConfig(),
			ActivityThreshold: 1.0,
		},
		Detector: detector.DefaultConfig(),
		Canvas: Canvas{
			Width:       eng.Width,
			Height:      eng.Height,
			Ink:         canvas.DefaultInk,
			StrokeWidth: eng.StrokeWidth,
			Opacity:     canvas.DefaultOpacity,
			Skeleton:    true,
		},
		Gestures: Gestures{
			PinchDistance:    eng.Thresholds.PinchDistance,
			MotionThreshold:  eng.MotionThreshold,
			ClearCooldown:    eng.ClearCooldown,
			ClearFingerCount: eng.ClearFingerCount,
			StrokeBuffer:     eng.StrokeCapacity,
			MotionHistory:    eng.MotionCapacity,
			FistDebounce:     eng.FistDebounce,
		},
		OCR: ocr.DefaultConfig(),
		Server: Server{
			Addr:      "127.0.0.1:8080",
			StaticDir: "web",
		},
		Output: Output{
			Action: "type",
		},
	}
}

// DefaultPath returns ~/.skywrite/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".skywrite", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	case c.Canvas.StrokeWidth <= 0:
		return fmt.Errorf("stroke width must be positive, got %d", c.Canvas.StrokeWidth)
	case c.Canvas.Opacity < 0 || c.Canvas.Opacity > 1:
		return fmt.Errorf("opacity must be within [0,1], got %g", c.Canvas.Opacity)
	case c.Gestures.StrokeBuffer <= 0 || c.Gestures.MotionHistory <= 0:
		return fmt.Errorf("buffer sizes must be positive, got stroke=%d motion=%d", c.Gestures.StrokeBuffer, c.Gestures.MotionHistory)
	case c.Gestures.PinchDistance <= 0:
		return fmt.Errorf("pinch distance must be positive, got %g", c.Gestures.PinchDistance)
	case c.Gestures.MotionThreshold <= 0:
		return fmt.Errorf("motion threshold must be positive, got %g", c.Gestures.MotionThreshold)
	case c.Gestures.ClearCooldown < 0:
		return fmt.Errorf("clear cooldown must not be negative, got %v", c.Gestures.ClearCooldown)
	case c.Gestures.ClearFingerCount < 1 || c.Gestures.ClearFingerCount > 4:
		return fmt.Errorf("clear finger count must be between 1 and 4, got %d", c.Gestures.ClearFingerCount)
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0:
		return fmt.Errorf("frame rates must be positive, got idle=%d active=%d", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	}
	if _, err := canvas.ParseInk(c.Canvas.Ink); err != nil {
		return err
	}
	return nil
}

// Engine converts the canvas and gesture sections into an engine configuration.
func (c Config) Engine() (engine.Config, error) {
	ink, err := canvas.ParseInk(c.Canvas.Ink)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Width:            c.Canvas.Width,
		Height:           c.Canvas.Height,
		Ink:              ink,
		StrokeWidth:      c.Canvas.StrokeWidth,
		Thresholds:       gesture.Thresholds{PinchDistance: c.Gestures.PinchDistance},
		StrokeCapacity:   c.Gestures.StrokeBuffer,
		MotionCapacity:   c.Gestures.MotionHistory,
		MotionThreshold:  c.Gestures.MotionThreshold,
		ClearCooldown:    c.Gestures.ClearCooldown,
		ClearFingerCount: c.Gestures.ClearFingerCount,
		FistDebounce:     c.Gestures.FistDebounce,
	}, nil
}

// DatabasePath returns the SQLite journal location.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "skywrite.db")
}
