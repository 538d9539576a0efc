package engine

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what an Event reports.
type EventKind string

const (
	// EventCleared reports that the canvas was wiped.
	EventCleared EventKind = "cleared"
	// EventRecognized reports a recognition attempt. Text is empty when
	// nothing was recognized or the recognizer failed.
	EventRecognized EventKind = "recognized"
)

// Source tells whether an event came from a hand gesture or a manual override.
type Source string

const (
	SourceGesture Source = "gesture"
	SourceManual  Source = "manual"
)

// Event is an observable outcome of a tick or a manual override.
type Event struct {
	ID     string    `json:"id"`
	Kind   EventKind `json:"kind"`
	Text   string    `json:"text"`
	Err    string    `json:"error,omitempty"`
	Source Source    `json:"source"`
	At     time.Time `json:"at"`
}

func newEvent(kind EventKind, source Source, at time.Time) Event {
	return Event{
		ID:     uuid.New().String(),
		Kind:   kind,
		Source: source,
		At:     at,
	}
}
