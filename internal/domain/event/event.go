// Package event defines the events exchanged between the batch scheduler, the
// invocation worker, and the driving event queue.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Well-known event names. The schedule event is self-named (continuations reuse
// whatever name the run was started with), so only the cross-component names are
// fixed here.
const (
	// NameInvoke triggers the invocation worker for one record.
	NameInvoke = "invoke"
	// NameDone records a completed invocation. No processor consumes it.
	NameDone = "done"
)

type payloadKind int

const (
	kindNone payloadKind = iota
	kindProgress
	kindRecord
)

// Payload is a tagged union carrying either an integer progress counter (schedule
// continuations) or an invocation record name (invoke/done handoff). The shape is
// discriminated by event name at the queue boundary, never cast ad hoc.
type Payload struct {
	kind     payloadKind
	progress int
	record   string
}

// Progress returns a payload carrying a scheduling progress counter.
func Progress(count int) Payload {
	return Payload{kind: kindProgress, progress: count}
}

// Record returns a payload carrying an invocation record name.
func Record(name string) Payload {
	return Payload{kind: kindRecord, record: name}
}

// ProgressCount returns the carried counter. Absent payloads read as zero, which
// is the initial state of the scheduling state machine.
func (p Payload) ProgressCount() (int, bool) {
	if p.kind == kindRecord {
		return 0, false
	}
	return p.progress, true
}

// RecordName returns the carried record name, if any.
func (p Payload) RecordName() (string, bool) {
	if p.kind != kindRecord {
		return "", false
	}
	return p.record, true
}

// IsZero reports whether the payload carries nothing.
func (p Payload) IsZero() bool {
	return p.kind == kindNone
}

// Event is one unit of work delivered by the driver. ScheduledAt is the earliest
// time the event should be dispatched.
type Event struct {
	Name        string
	ScheduledAt time.Time
	Payload     Payload
}

// wireEvent is the JSON form used by the queue. Exactly one of Progress or Record
// is set, matching the event name.
type wireEvent struct {
	Name        string  `json:"name"`
	ScheduledAt int64   `json:"scheduled_at_ms"`
	Progress    *int    `json:"progress,omitempty"`
	Record      *string `json:"record,omitempty"`
}

// carriesRecord reports whether events with the given name carry a record-name
// payload. Every other event name belongs to a schedule chain and carries a
// progress counter (or nothing, for the initial event).
func carriesRecord(name string) bool {
	return name == NameInvoke || name == NameDone
}

// Marshal encodes an event for the queue. It fails when the payload shape does
// not match the event name.
func Marshal(ev Event) ([]byte, error) {
	w := wireEvent{
		Name:        ev.Name,
		ScheduledAt: ev.ScheduledAt.UnixMilli(),
	}
	switch {
	case carriesRecord(ev.Name):
		rec, ok := ev.Payload.RecordName()
		if !ok {
			return nil, fmt.Errorf("event %q requires a record payload", ev.Name)
		}
		w.Record = &rec
	case ev.Payload.IsZero():
		// Initial schedule events legitimately carry no payload.
	default:
		count, ok := ev.Payload.ProgressCount()
		if !ok {
			return nil, fmt.Errorf("event %q requires a progress payload", ev.Name)
		}
		w.Progress = &count
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal event %q: %w", ev.Name, err)
	}
	return data, nil
}

// Unmarshal decodes an event from the queue, resolving the payload shape from the
// event name.
func Unmarshal(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if w.Name == "" {
		return Event{}, fmt.Errorf("event is missing a name")
	}

	ev := Event{
		Name:        w.Name,
		ScheduledAt: time.UnixMilli(w.ScheduledAt).UTC(),
	}
	if carriesRecord(w.Name) {
		if w.Record == nil {
			return Event{}, fmt.Errorf("event %q is missing its record payload", w.Name)
		}
		ev.Payload = Record(*w.Record)
		return ev, nil
	}
	if w.Record != nil {
		return Event{}, fmt.Errorf("event %q must not carry a record payload", w.Name)
	}
	if w.Progress != nil {
		ev.Payload = Progress(*w.Progress)
	}
	return ev, nil
}
