package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Canvas.Width != 640 || cfg.Canvas.Height != 480 {
		t.Errorf("canvas = %dx%d, want 640x480", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Canvas.Opacity != 0.3 {
		t.Errorf("opacity = %f, want 0.3", cfg.Canvas.Opacity)
	}
	if cfg.Gestures.ClearCooldown != 1500*time.Millisecond {
		t.Errorf("clear cooldown = %v, want 1.5s", cfg.Gestures.ClearCooldown)
	}
	if !cfg.Camera.Mirror {
		t.Error("camera should mirror by default")
	}
	if cfg.Camera.IdleFPS != 5 || cfg.Camera.ActiveFPS != 15 {
		t.Errorf("fps = %d/%d, want 5/15", cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS)
	}
	if cfg.OCR.Language != "eng" || cfg.OCR.Level != 120 {
		t.Errorf("ocr = %+v, want eng/120", cfg.OCR)
	}
	if !strings.HasSuffix(cfg.DatabasePath(), filepath.Join(".skywrite", "skywrite.db")) {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Canvas.Ink != "#FFFFFF" {
		t.Errorf("expected defaults, got ink %q", cfg.Canvas.Ink)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
camera:
  device_id: 2
  mirror: false
  idle_after: 3s
canvas:
  ink: "#00FF00"
  stroke_width: 8
gestures:
  clear_cooldown: 2500ms
  fist_debounce: false
ocr:
  whitelist: "0123456789"
  threshold_level: 100
output:
  plugin: keyboard
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Camera.DeviceID != 2 || cfg.Camera.Mirror {
		t.Errorf("camera = %+v, want device 2 without mirror", cfg.Camera.Config)
	}
	if cfg.Camera.IdleAfter != 3*time.Second {
		t.Errorf("idle after = %v, want 3s", cfg.Camera.IdleAfter)
	}
	if cfg.Camera.Width != 640 {
		t.Errorf("unset width should keep default, got %d", cfg.Camera.Width)
	}
	if cfg.Gestures.ClearCooldown != 2500*time.Millisecond || cfg.Gestures.FistDebounce {
		t.Errorf("gestures = %+v", cfg.Gestures)
	}
	if cfg.Gestures.StrokeBuffer != 10 {
		t.Errorf("unset stroke buffer should keep default, got %d", cfg.Gestures.StrokeBuffer)
	}
	if cfg.OCR.Whitelist != "0123456789" || cfg.OCR.Level != 100 || cfg.OCR.Language != "eng" {
		t.Errorf("ocr = %+v", cfg.OCR)
	}
	if cfg.Output.Plugin != "keyboard" || cfg.Output.Action != "type" {
		t.Errorf("output = %+v", cfg.Output)
	}

	eng, err := cfg.Engine()
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if eng.Ink != (color.RGBA{G: 255, A: 255}) || eng.StrokeWidth != 8 {
		t.Errorf("engine ink/width = %v/%d", eng.Ink, eng.StrokeWidth)
	}
	if eng.FistDebounce || eng.ClearCooldown != 2500*time.Millisecond {
		t.Errorf("engine gestures = %+v", eng)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "canvas: [1, 2"},
		{"opacity out of range", "canvas:\n  opacity: 1.5\n"},
		{"bad ink", "canvas:\n  ink: white\n"},
		{"zero stroke buffer", "gestures:\n  stroke_buffer: 0\n"},
		{"too many fingers", "gestures:\n  clear_finger_count: 5\n"},
		{"negative canvas", "canvas:\n  width: -1\n"},
		{"bad duration", "gestures:\n  clear_cooldown: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Gestures.ClearCooldown = 2 * time.Second
	cfg.Output.Plugin = "keyboard"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "clear_cooldown: 2s") {
		t.Errorf("expected human readable duration in saved file:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Gestures.ClearCooldown != 2*time.Second || loaded.Output.Plugin != "keyboard" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
