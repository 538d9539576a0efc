// Package ocr turns a snapshot of the ink canvas into a best-effort text token.
//
// The production Recognizer wraps Tesseract (via gosseract/v2) in single
// character mode. Snapshots are light ink on a black background, so they are
// preprocessed into dark ink on white, cropped to the ink, and padded before
// Tesseract sees them.
package ocr

import (
	"context"
	"image"
	"sync"
)

// Recognizer converts a raster snapshot into text. An empty string with a nil
// error means nothing was recognized.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecognizerFunc adapts a plain function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// StaticRecognizer returns a fixed answer and remembers every image it was given.
type StaticRecognizer struct {
	mu     sync.Mutex
	text   string
	err    error
	images []image.Image
}

// NewStaticRecognizer creates a recognizer that always answers text.
func NewStaticRecognizer(text string) *StaticRecognizer {
	return &StaticRecognizer{text: text}
}

// SetResult changes the answer returned by later calls.
func (r *StaticRecognizer) SetResult(text string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	r.err = err
}

// Recognize records img and returns the configured answer.
func (r *StaticRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, img)
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

// Calls returns how many times Recognize ran.
func (r *StaticRecognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images)
}

// Images returns the images seen so far, oldest first.
func (r *StaticRecognizer) Images() []image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]image.Image, len(r.images))
	copy(out, r.images)
	return out
}
