package server

import (
	"fmt"
	"net/http"
	"time"
)

// StreamInterval is how often the MJPEG stream polls for a new display frame.
const StreamInterval = 66 * time.Millisecond // ~15 FPS

// FrameSource provides the latest JPEG display frame.
type FrameSource interface {
	LatestFrame() []byte
}

// StreamHandler serves the composited display frames as MJPEG.
type StreamHandler struct {
	source FrameSource
}

// NewStreamHandler creates a StreamHandler reading from source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams frames until the client goes away. A frame is sent
// only when the tick loop has produced a new one.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		if frame := h.source.LatestFrame(); len(frame) > 0 && !sameFrame(frame, last) {
			if err := writePart(w, frame); err != nil {
				return
			}
			last = frame
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// sameFrame reports whether a and b are the same published slice. The tick
// loop replaces the slice on every frame rather than mutating it.
func sameFrame(a, b []byte) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}

func writePart(w http.ResponseWriter, frame []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
