// Package server is the local HTTP interface of skywrite: the live display
// stream, the event feed, manual overrides and the recognition history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"time"

	"github.com/ayusman/skywrite/internal/app"
	"github.com/ayusman/skywrite/internal/engine"
	"github.com/ayusman/skywrite/internal/server/api"
	"github.com/ayusman/skywrite/internal/store"
)

// Pipeline is the part of the running app that the HTTP layer drives.
type Pipeline interface {
	LatestFrame() []byte
	Snapshot() (image.Image, error)
	ForceClear() engine.Event
	ForceRecognize(ctx context.Context) engine.Event
	Subscribe(fn func(engine.Event))
	Status() app.Status
	SetEnabled(enabled bool)
}

// Config holds the server configuration. Routes whose dependency is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Pipeline  Pipeline
}

// Server is the skywrite HTTP handler.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *EventHub
	start  time.Time
}

// New creates a Server and subscribes its event hub to the pipeline.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		hub:    NewEventHub(),
		start:  time.Now(),
	}
	if config.Pipeline != nil {
		config.Pipeline.Subscribe(s.hub.Publish)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		history := api.NewHistoryHandler(s.config.Store)
		s.mux.Handle("/api/history", history)
		s.mux.Handle("/api/history/", history)
	}

	if p := s.config.Pipeline; p != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/stream", NewStreamHandler(p))
		s.mux.Handle("/api/events", s.hub)
		s.mux.HandleFunc("/api/canvas/clear", s.handleClear)
		s.mux.HandleFunc("/api/canvas/recognize", s.handleRecognize)
		s.mux.HandleFunc("/api/canvas.png", s.handleSnapshot)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// Hub returns the websocket event hub.
func (s *Server) Hub() *EventHub {
	return s.hub
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

type statusRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleStatus reports the pipeline status. PUT {"enabled": bool} toggles it.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			api.WriteError(w, http.StatusBadRequest, `body must be {"enabled": true|false}`)
			return
		}
		s.config.Pipeline.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.WriteJSON(w, http.StatusOK, s.config.Pipeline.Status())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
