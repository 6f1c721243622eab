package event

import "time"

// Event is one published occurrence.
type Event struct {
	Type string
	Data map[string]any
	Time time.Time
}

// Handler receives events.
type Handler func(Event)
