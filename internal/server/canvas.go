package server

import (
	"bytes"
	"log"
	"net/http"

	"github.com/disintegration/imaging"

	"github.com/ayusman/skywrite/internal/server/api"
)

// handleClear is the manual "clear canvas" override.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.WriteJSON(w, http.StatusOK, s.config.Pipeline.ForceClear())
}

// handleRecognize is the manual "recognize now" override. A recognizer
// failure is reported inside the event, not as an HTTP error.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.WriteJSON(w, http.StatusOK, s.config.Pipeline.ForceRecognize(r.Context()))
}

// handleSnapshot returns the current drawing as PNG.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, err := s.config.Pipeline.Snapshot()
	if err != nil {
		log.Printf("Canvas snapshot failed: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "Failed to snapshot canvas")
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Failed to encode canvas")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}
