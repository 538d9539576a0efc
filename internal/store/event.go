package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Event kinds and sources as stored in the events table.
const (
	KindCleared    = "cleared"
	KindRecognized = "recognized"

	SourceGesture = "gesture"
	SourceManual  = "manual"
)

// DefaultListLimit caps List and ListByKind when limit is not positive.
const DefaultListLimit = 100

// Event is one journaled engine event.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Error     string    `json:"error,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventRepository provides access to the events journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts e. An empty ID is filled with a new UUID and a zero
// CreatedAt with the current time.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, text, error, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Text, e.Error, e.Source, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, kind, text, error, source, created_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Kind, &e.Text, &e.Error, &e.Source, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the newest events first, at most limit of them.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	return r.query(
		`SELECT id, kind, text, error, source, created_at
		 FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		normalizeLimit(limit),
	)
}

// ListByKind returns the newest events of one kind first.
func (r *EventRepository) ListByKind(kind string, limit int) ([]*Event, error) {
	return r.query(
		`SELECT id, kind, text, error, source, created_at
		 FROM events WHERE kind = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		kind, normalizeLimit(limit),
	)
}

func (r *EventRepository) query(q string, args ...any) ([]*Event, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Text, &e.Error, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByKind returns how many events of each kind are journaled.
func (r *EventRepository) CountByKind() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{KindCleared: 0, KindRecognized: 0}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Delete removes an event by its ID.
func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll empties the journal and returns how many events were removed.
func (r *EventRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
