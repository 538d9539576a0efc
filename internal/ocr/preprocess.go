package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Options tunes snapshot preprocessing.
type Options struct {
	// BlurRadius is the Gaussian blur radius applied before thresholding.
	BlurRadius float64 `yaml:"blur_radius"`
	// Level is the grey level a pixel must exceed to count as ink.
	Level uint8 `yaml:"threshold_level"`
	// Padding is the white margin, in pixels, added around the cropped glyph.
	Padding int `yaml:"padding"`
	// TargetHeight rescales the glyph box to this height when positive.
	TargetHeight int `yaml:"target_height"`
}

// DefaultOptions mirrors a 5x5 Gaussian blur followed by a binary threshold at 120.
func DefaultOptions() Options {
	return Options{
		BlurRadius:   2,
		Level:        120,
		Padding:      20,
		TargetHeight: 0,
	}
}

// Preprocess converts a light-on-dark snapshot into dark ink on a white
// background, cropped to the ink and padded. ok is false when the snapshot
// holds no ink at all.
func Preprocess(img image.Image, opts Options) (out image.Image, ok bool) {
	if img == nil || img.Bounds().Empty() {
		return nil, false
	}

	gray := effect.Grayscale(img)
	blurred := blur.Gaussian(gray, opts.BlurRadius)
	// segment.Threshold keeps levels >= its argument.
	cut := opts.Level
	if cut < math.MaxUint8 {
		cut++
	}
	binary := segment.Threshold(blurred, cut)

	box, found := inkBounds(binary)
	if !found {
		return nil, false
	}

	glyph := effect.Invert(imaging.Crop(binary, box))

	var sized image.Image = glyph
	if opts.TargetHeight > 0 && glyph.Bounds().Dy() != opts.TargetHeight {
		sized = imaging.Resize(glyph, 0, opts.TargetHeight, imaging.Lanczos)
	}

	pad := max(opts.Padding, 0)
	b := sized.Bounds()
	bg := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.White)
	return imaging.Paste(bg, sized, image.Pt(pad, pad)), true
}

// inkBounds returns the smallest rectangle holding every white pixel of a
// thresholded image.
func inkBounds(img *image.Gray) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[x-b.Min.X] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// EncodePNG encodes img for handing to Tesseract.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
