// Package canvas holds the persistent ink raster that strokes are drawn onto.
//
// A Canvas is not safe for concurrent use. Its single owner serializes access.
package canvas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// Default raster size and ink.
const (
	DefaultWidth       = 640
	DefaultHeight      = 480
	DefaultInk         = "#FFFFFF"
	DefaultStrokeWidth = 5
	DefaultOpacity     = 0.3
)

// Canvas is a BGR raster, black where nothing has been drawn.
type Canvas struct {
	mat    gocv.Mat
	width  int
	height int
}

// New creates a blank canvas of the given size.
func New(width, height int) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Canvas{
		mat:    gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:  width,
		height: height,
	}
}

// Width returns the raster width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the raster height in pixels.
func (c *Canvas) Height() int { return c.height }

// DrawLine paints a segment from p1 to p2. Drawing the same segment twice
// leaves the raster unchanged.
func (c *Canvas) DrawLine(p1, p2 image.Point, ink color.RGBA, width int) {
	if width <= 0 {
		width = DefaultStrokeWidth
	}
	gocv.Line(&c.mat, p1, p2, ink, width)
}

// Clear zeroes the raster.
func (c *Canvas) Clear() {
	c.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Snapshot returns an independent RGBA copy of the raster. Later drawing or
// clearing does not affect it.
func (c *Canvas) Snapshot() (image.Image, error) {
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("snapshot canvas: %w", err)
	}
	return img, nil
}

// InkPixels counts pixels that carry any ink.
func (c *Canvas) InkPixels() int {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(c.mat, &gray, gocv.ColorBGRToGray)
	return gocv.CountNonZero(gray)
}

// IsBlank reports whether nothing is drawn.
func (c *Canvas) IsBlank() bool {
	return c.InkPixels() == 0
}

// CompositeOver blends the ink over base and returns a new frame sized like
// the canvas: base*(1-opacity) + ink*opacity. base is not modified.
// The caller closes the returned Mat.
func (c *Canvas) CompositeOver(base gocv.Mat, opacity float64) gocv.Mat {
	opacity = clamp01(opacity)
	out := gocv.NewMat()

	if base.Empty() {
		c.mat.CopyTo(&out)
		return out
	}

	src := base
	if base.Cols() != c.width || base.Rows() != c.height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(base, &resized, image.Point{X: c.width, Y: c.height}, 0, 0, gocv.InterpolationLinear)
		src = resized
	}

	gocv.AddWeighted(src, 1-opacity, c.mat, opacity, 0, &out)
	return out
}

// Close releases the raster.
func (c *Canvas) Close() error {
	return c.mat.Close()
}

// ParseInk converts a hex colour such as "#FFFFFF" or "#0f0" to an opaque RGBA.
func ParseInk(hex string) (color.RGBA, error) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("ink colour %q: %w", hex, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
