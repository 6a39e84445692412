package eventlog

import (
	"fmt"
	"time"

	"eventsim/internal/temporal"
)

// Event is a single generated analytics event. It is the unit of the event log.
type Event struct {
	// Event is the event name (e.g., "sign up").
	Event string `json:"event"`
	// DistinctID identifies the user who performed the event.
	DistinctID string `json:"distinct_id"`
	// Time is the ISO-8601 UTC instant with millisecond precision.
	Time string `json:"time"`
	// InsertID is unique per event and drives deduplication.
	InsertID string `json:"insert_id"`

	// Properties holds the sampled event and funnel properties.
	Properties map[string]any `json:"properties,omitempty"`
}

// Reserved column names used when an event is flattened into a record.
const (
	FieldEvent      = "event"
	FieldDistinctID = "distinct_id"
	FieldTime       = "time"
	FieldInsertID   = "insert_id"
)

// At parses the event time. A malformed time yields the zero time.
func (e Event) At() time.Time {
	t, err := time.Parse(temporal.ISOLayout, e.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Record flattens the event into a single map. Reserved fields win over
// properties of the same name.
func (e Event) Record() map[string]any {
	rec := make(map[string]any, len(e.Properties)+4)
	for k, v := range e.Properties {
		rec[k] = v
	}
	rec[FieldEvent] = e.Event
	rec[FieldDistinctID] = e.DistinctID
	rec[FieldTime] = e.Time
	rec[FieldInsertID] = e.InsertID
	return rec
}

// identity computes the deduplication key. The insert id is used when present.
func (e Event) identity() string {
	if e.InsertID != "" {
		return e.InsertID
	}
	return fmt.Sprintf("%s|%s|%s", e.Event, e.DistinctID, e.Time)
}
