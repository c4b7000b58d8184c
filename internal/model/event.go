package model

import "time"

// EventKind names a change made to the task list
type EventKind string

const (
	EventAdd      EventKind = "add"
	EventComplete EventKind = "complete"
	EventReopen   EventKind = "reopen"
	EventDelete   EventKind = "delete"
	EventClear    EventKind = "clear"
)

// Event is one entry of the activity journal
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
