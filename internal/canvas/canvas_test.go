package canvas

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/skywrite/internal/detector"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func TestParseInk(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    color.RGBA
		wantErr bool
	}{
		{"white", "#FFFFFF", white, false},
		{"lower case", "#ff8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}, false},
		{"short form", "#0f0", color.RGBA{G: 255, A: 255}, false},
		{"missing hash", "FFFFFF", color.RGBA{}, true},
		{"garbage", "#zzzzzz", color.RGBA{}, true},
		{"empty", "", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInk(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInk(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseInk(%q) = %v, want %v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{{-1, 0}, {0, 0}, {0.3, 0.3}, {1, 1}, {2, 1}} {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestCanvas_NewIsBlank(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(640, 480)
	defer c.Close()

	if c.Width() != 640 || c.Height() != 480 {
		t.Errorf("size = %dx%d, want 640x480", c.Width(), c.Height())
	}
	if !c.IsBlank() {
		t.Errorf("new canvas should be blank, found %d ink pixels", c.InkPixels())
	}
}

func TestCanvas_DrawLineAndClear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(640, 480)
	defer c.Close()

	c.DrawLine(image.Pt(100, 100), image.Pt(200, 100), white, 5)
	if c.IsBlank() {
		t.Fatal("canvas should carry ink after DrawLine")
	}

	c.Clear()
	if !c.IsBlank() {
		t.Errorf("canvas should be blank after Clear, found %d ink pixels", c.InkPixels())
	}
}

func TestCanvas_DrawLineIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(320, 240)
	defer c.Close()

	c.DrawLine(image.Pt(10, 10), image.Pt(100, 80), white, 5)
	once := c.InkPixels()
	c.DrawLine(image.Pt(10, 10), image.Pt(100, 80), white, 5)

	if twice := c.InkPixels(); twice != once {
		t.Errorf("redrawing a segment changed ink pixels from %d to %d", once, twice)
	}
}

func TestCanvas_SnapshotIsIndependent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(320, 240)
	defer c.Close()

	c.DrawLine(image.Pt(50, 120), image.Pt(250, 120), white, 5)

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	c.Clear()

	r, g, b, _ := snap.At(150, 120).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("snapshot pixel on the stroke = (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
	if snap.Bounds().Dx() != 320 || snap.Bounds().Dy() != 240 {
		t.Errorf("snapshot bounds = %v, want 320x240", snap.Bounds())
	}
}

func TestCanvas_CompositeOver(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(640, 480)
	defer c.Close()
	c.DrawLine(image.Pt(0, 10), image.Pt(639, 10), white, 5)

	base := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer base.Close()
	base.SetTo(gocv.NewScalar(100, 100, 100, 0))

	out := c.CompositeOver(base, 0.3)
	defer out.Close()

	if out.Cols() != 640 || out.Rows() != 480 {
		t.Fatalf("composite size = %dx%d, want 640x480", out.Cols(), out.Rows())
	}

	// Off the stroke: 100*0.7 + 0*0.3 = 70.
	if v := out.GetVecbAt(300, 300)[0]; v < 69 || v > 71 {
		t.Errorf("background pixel = %d, want about 70", v)
	}
	// On the stroke: 100*0.7 + 255*0.3 = 146.5.
	if v := out.GetVecbAt(10, 300)[0]; v < 145 || v > 148 {
		t.Errorf("ink pixel = %d, want about 146", v)
	}

	// The base frame is untouched.
	if v := base.GetVecbAt(10, 300)[0]; v != 100 {
		t.Errorf("base pixel changed to %d", v)
	}
	if c.IsBlank() {
		t.Error("compositing must not clear the canvas")
	}
}

func TestCanvas_CompositeOverResizesBase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(640, 480)
	defer c.Close()

	base := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer base.Close()

	out := c.CompositeOver(base, 0.3)
	defer out.Close()

	if out.Cols() != 640 || out.Rows() != 480 {
		t.Errorf("composite size = %dx%d, want canvas size 640x480", out.Cols(), out.Rows())
	}
}

func TestDrawSkeletonAndLabel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := detector.OpenPalmLandmarks(0.5, 0.4)
	DrawSkeleton(&frame, &hand)
	DrawLabel(&frame, "Writing")

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("expected skeleton and label to be drawn")
	}

	// Nil inputs are ignored.
	DrawSkeleton(nil, &hand)
	DrawSkeleton(&frame, nil)
	DrawLabel(nil, "x")
}
