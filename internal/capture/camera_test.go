package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantWidth  int
		wantHeight int
	}{
		{"defaults", DefaultConfig(), 640, 480},
		{"custom resolution", Config{DeviceID: 1, Width: 1280, Height: 720}, 1280, 720},
		{"zero size falls back", Config{DeviceID: 2}, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.config)

			if got := cam.FPS(); got != DefaultFPS {
				t.Errorf("FPS() = %d, want %d (default)", got, DefaultFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}

			impl := cam.(*cameraImpl)
			if impl.config.Width != tt.wantWidth || impl.config.Height != tt.wantHeight {
				t.Errorf("resolution = %dx%d, want %dx%d", impl.config.Width, impl.config.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if !c.Mirror {
		t.Error("default camera config should mirror frames")
	}
	if c.DeviceID != 0 {
		t.Errorf("DeviceID = %d, want 0", c.DeviceID)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{"set to 10", 10, 10},
		{"set to 30", 30, 30},
		{"set to 1", 1, 1},
		{"set to 0 should keep previous", 0, 1},
		{"set to negative should keep previous", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	// Close on not opened camera should not panic and return nil
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestMirror_NilFrame(t *testing.T) {
	// Must not panic.
	Mirror(nil)
}
