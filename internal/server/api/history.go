// Package api provides the JSON handlers for the skywrite event history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/skywrite/internal/store"
)

// MaxHistoryLimit caps the limit query parameter.
const MaxHistoryLimit = 1000

// HistoryHandler serves the journal of clears and recognitions.
//
//	GET    /api/history?kind=recognized&limit=N
//	DELETE /api/history
//	GET    /api/history/{id}
//	DELETE /api/history/{id}
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler backed by s.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// ServeHTTP routes collection and item requests.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/history")
	id = strings.Trim(id, "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type eventResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Error     string `json:"error,omitempty"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

type listHistoryResponse struct {
	Events []eventResponse `json:"events"`
	Counts map[string]int  `json:"counts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Kind:      e.Kind,
		Text:      e.Text,
		Error:     e.Error,
		Source:    e.Source,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := store.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	var (
		events []*store.Event
		err    error
	)
	switch kind := q.Get("kind"); kind {
	case "":
		events, err = h.store.Events().List(limit)
	case store.KindCleared, store.KindRecognized:
		events, err = h.store.Events().ListByKind(kind, limit)
	default:
		WriteError(w, http.StatusBadRequest, "kind must be cleared or recognized")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	counts, err := h.store.Events().CountByKind()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to count history")
		return
	}

	resp := listHistoryResponse{
		Events: make([]eventResponse, 0, len(events)),
		Counts: counts,
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toResponse(e))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.store.Events().GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	WriteJSON(w, http.StatusOK, toResponse(e))
}

func (h *HistoryHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Events().Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Events().DeleteAll()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
