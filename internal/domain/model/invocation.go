// Package model defines the core data types used throughout the invoker load-run system.
package model

import (
	"fmt"
	"strings"
)

// InvocationState represents the lifecycle state of an invocation record.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type InvocationState string

const (
	// StateUnknown is the zero value for records that have not been scheduled yet.
	StateUnknown InvocationState = "unknown"
	// StateScheduled indicates the record is persisted and waiting to be invoked.
	StateScheduled InvocationState = "scheduled"
	// StateCreated indicates the target call succeeded and was recorded.
	StateCreated InvocationState = "created"
	// StateFailed indicates the target call failed.
	StateFailed InvocationState = "failed"
)

// UnmarshalText implements encoding.TextUnmarshaler for InvocationState to allow env parsing.
func (s *InvocationState) UnmarshalText(text []byte) error {
	v := InvocationState(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid InvocationState: %q", v)
	}
	*s = v
	return nil
}

// Valid returns true if the InvocationState is one of the defined states.
func (s InvocationState) Valid() bool {
	return s == StateUnknown || s == StateScheduled || s == StateCreated || s == StateFailed
}

// Terminal returns true for states that admit no further transition.
func (s InvocationState) Terminal() bool {
	return s == StateCreated || s == StateFailed
}

// Invocation is one persisted unit of scheduled work. Name is the sole lookup
// key; username and message are set once at creation and never mutated. State is
// the only column updated after insert, and it is updated at most once.
type Invocation struct {
	Name     string          `json:"name"     db:"name"`
	Username string          `json:"username" db:"username"`
	Message  string          `json:"message"  db:"message"`
	State    InvocationState `json:"state"    db:"state"`
}

// Eligible reports whether the record may be picked up by the invocation worker.
// Anything other than a fully-populated scheduled record is skipped, which is what
// makes duplicate event delivery harmless.
func (i *Invocation) Eligible() bool {
	return i.State == StateScheduled && i.Username != "" && i.Message != ""
}

// User is a directory entry used to authenticate target calls.
type User struct {
	Username string `json:"username" db:"username"`
	Password string `json:"-"        db:"password"`
}
