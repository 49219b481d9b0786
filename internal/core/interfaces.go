// Package core defines the collaborator interfaces and shared configuration for
// the invoker load-run system. Services depend on these interfaces; the data and
// adapter packages provide the implementations.
package core

import (
	"context"
	"time"

	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/domain/model"
)

// InvocationStore provides persistence for invocation records.
type InvocationStore interface {
	// Create inserts a new record with the state it carries.
	// A duplicate name surfaces as a Conflict AppError; callers decide policy
	// (the batch scheduler skips the iteration and continues).
	Create(ctx context.Context, inv *model.Invocation) error

	// FindByName looks up a record by its unique name.
	// Returns a NotFound AppError when no record exists.
	FindByName(ctx context.Context, name string) (*model.Invocation, error)

	// UpdateState atomically finds the record by name and sets its state.
	// Return semantics:
	//   - (true, nil): record found and updated
	//   - (false, nil): no record with that name
	//   - (false, err): update failed due to error
	// The single-statement update is the at-most-once bookkeeping primitive: a
	// duplicate delivery can never leave the row half-applied.
	UpdateState(ctx context.Context, name string, state model.InvocationState) (bool, error)
}

// UserDirectory resolves the principals used to authenticate target calls.
type UserDirectory interface {
	// RandomUser returns a uniformly random directory entry.
	RandomUser(ctx context.Context) (*model.User, error)
	// FindByUsername returns the entry for the given username, or a NotFound
	// AppError when absent.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// CallStatus is the observable outcome of one target call.
type CallStatus struct {
	Code   int
	Status string
}

// OK reports whether the target answered with HTTP 200.
func (s CallStatus) OK() bool {
	return s.Code == 200
}

// TargetCaller performs the authenticated hello-world call against the target
// server. Implementations own transport-level timeouts; the worker records a
// non-OK status as a failed invocation and never retries.
type TargetCaller interface {
	Invoke(ctx context.Context, user *model.User, message string) (CallStatus, error)
}

// EventQueue is the durable queue the driver pops due events from. Events pushed
// with a future ScheduledAt must not be returned by PopDue before that time.
type EventQueue interface {
	Push(ctx context.Context, events ...event.Event) error
	PopDue(ctx context.Context, now time.Time, limit int) ([]event.Event, error)
	Size(ctx context.Context) (int64, error)
}

// Result captures the outcome of processing one event: the follow-on events to
// enqueue plus a human-readable summary suitable for audit logs. Success=false
// marks expected skips and call failures; hard failures are returned as errors
// instead.
type Result struct {
	Message string
	Events  []event.Event
	Success bool
}

// Processor handles one delivered event. A returned error is an unrecoverable
// condition (e.g. work executed but not recorded) and aborts the run; every
// expected business outcome is resolved into a Result.
type Processor interface {
	ProcessEvent(ctx context.Context, ev event.Event) (*Result, error)
}

// RunConfig holds the parameters of one load run.
type RunConfig struct {
	// RunID prefixes every generated invocation name.
	RunID string `json:"run_id"`
	// InvocationTarget is the total number of invocations to schedule.
	InvocationTarget int `json:"invocation_target"`
	// BatchSize bounds how many invocations one schedule event may emit.
	BatchSize int `json:"batch_size"`
	// TimeBetweenInvocations paces the scheduled times of consecutive invocations.
	TimeBetweenInvocations time.Duration `json:"time_between_invocations"`
	// MessagePattern is either a literal message or a fmt verb pattern that the
	// running total is substituted into (e.g. "Message %05d").
	MessagePattern string `json:"message_pattern"`
	// ScheduleEventName names the self-addressed schedule chain.
	ScheduleEventName string `json:"schedule_event_name"`
}

// DefaultRunConfig returns a RunConfig with sensible defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		RunID:                  "run",
		InvocationTarget:       100,
		BatchSize:              100,
		TimeBetweenInvocations: 50 * time.Millisecond,
		MessagePattern:         "Message %07d",
		ScheduleEventName:      "scheduleInvocations",
	}
}

// InvokeConfig holds the invocation worker's policy knobs.
type InvokeConfig struct {
	// MarkFailedOnMissingUser transitions a record to failed when its user no
	// longer resolves. Off by default: the record stays scheduled, matching the
	// skip semantics of the other eligibility checks.
	MarkFailedOnMissingUser bool `json:"mark_failed_on_missing_user"`
}
