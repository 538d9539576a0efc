package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/skywrite/internal/store"
)

func setupHistory(t *testing.T) (*HistoryHandler, *store.Store, []*store.Event) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	events := []*store.Event{
		{Kind: store.KindRecognized, Text: "O", Source: store.SourceGesture},
		{Kind: store.KindCleared, Source: store.SourceGesture},
		{Kind: store.KindRecognized, Text: "K", Source: store.SourceManual},
	}
	for i, e := range events {
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Events().Create(e); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}

	return NewHistoryHandler(s), s, events
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listHistoryResponse {
	t.Helper()
	var resp listHistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHistoryHandler_List(t *testing.T) {
	h, _, seeded := setupHistory(t)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst string
	}{
		{"all events newest first", "", 3, seeded[2].ID},
		{"only recognitions", "?kind=recognized", 2, seeded[2].ID},
		{"only clears", "?kind=cleared", 1, seeded[1].ID},
		{"limited", "?limit=1", 1, seeded[2].ID},
		{"limit above cap", "?limit=999999", 3, seeded[2].ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			resp := decodeList(t, rec)
			if len(resp.Events) != tt.wantCount {
				t.Fatalf("len(events) = %d, want %d", len(resp.Events), tt.wantCount)
			}
			if resp.Events[0].ID != tt.wantFirst {
				t.Errorf("first event = %s, want %s", resp.Events[0].ID, tt.wantFirst)
			}
			if resp.Counts[store.KindRecognized] != 2 || resp.Counts[store.KindCleared] != 1 {
				t.Errorf("counts = %v", resp.Counts)
			}
		})
	}
}

func TestHistoryHandler_List_BadQuery(t *testing.T) {
	h, _, _ := setupHistory(t)

	for _, query := range []string{"?limit=0", "?limit=-1", "?limit=ten", "?kind=drawn"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/history"+query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHistoryHandler_Get(t *testing.T) {
	h, _, seeded := setupHistory(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/"+seeded[0].ID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got eventResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != store.KindRecognized || got.Text != "O" || got.Source != store.SourceGesture {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt != "2026-05-01T10:00:00Z" {
		t.Errorf("created_at = %q", got.CreatedAt)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/history/missing", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing event status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	h, s, seeded := setupHistory(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/history/"+seeded[1].ID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/history/"+seeded[1].ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want %d", rec.Code, http.StatusOK)
	}
	var cleared map[string]int64
	json.NewDecoder(rec.Body).Decode(&cleared)
	if cleared["deleted"] != 2 {
		t.Errorf("deleted = %d, want 2", cleared["deleted"])
	}

	events, _ := s.Events().List(0)
	if len(events) != 0 {
		t.Errorf("journal should be empty, got %d", len(events))
	}
}

func TestHistoryHandler_MethodNotAllowed(t *testing.T) {
	h, _, seeded := setupHistory(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/history"},
		{http.MethodPut, "/api/history"},
		{http.MethodPut, "/api/history/" + seeded[0].ID},
		{http.MethodPatch, "/api/history/" + seeded[0].ID},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
