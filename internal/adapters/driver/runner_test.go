package driver_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/invoker/internal/adapters/driver"
	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/domain/event"
)

// memQueue is an in-memory core.EventQueue for exercising the runner without
// Redis. Ordering follows ScheduledAt like the real queue.
type memQueue struct {
	mu     sync.Mutex
	events []event.Event
}

func (q *memQueue) Push(_ context.Context, events ...event.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, events...)
	return nil
}

func (q *memQueue) PopDue(_ context.Context, now time.Time, limit int) ([]event.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].ScheduledAt.Before(q.events[j].ScheduledAt)
	})

	var due, rest []event.Event
	for _, ev := range q.events {
		if !ev.ScheduledAt.After(now) && len(due) < limit {
			due = append(due, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	q.events = rest
	return due, nil
}

func (q *memQueue) Size(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.events)), nil
}

// stubProcessor records delivered events and replies with a canned result.
type stubProcessor struct {
	mu     sync.Mutex
	seen   []event.Event
	result *core.Result
	err    error
}

func (p *stubProcessor) ProcessEvent(_ context.Context, ev event.Event) (*core.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, ev)
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &core.Result{Message: "ok", Success: true}, nil
}

func (p *stubProcessor) seenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func newRunner(t *testing.T, q core.EventQueue) *driver.Runner {
	t.Helper()
	r, err := driver.NewRunner(driver.RunnerOptions{Queue: q})
	require.NoError(t, err)
	return r
}

func TestRunner_RequiresQueue(t *testing.T) {
	_, err := driver.NewRunner(driver.RunnerOptions{})
	assert.Error(t, err)
}

func TestRunner_Seed(t *testing.T) {
	q := &memQueue{}
	r := newRunner(t, q)
	ctx := context.Background()

	initial := event.Event{Name: "scheduleInvocations", ScheduledAt: time.Now()}
	require.NoError(t, r.Seed(ctx, initial))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	// A non-empty queue means a run is already underway; seeding again is a noop.
	require.NoError(t, r.Seed(ctx, initial))
	size, err = q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestRunner_TickDispatchesDueEvents(t *testing.T) {
	q := &memQueue{}
	r := newRunner(t, q)
	ctx := context.Background()
	now := time.Now()

	proc := &stubProcessor{}
	r.Register(event.NameInvoke, proc)

	require.NoError(t, q.Push(ctx,
		event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(-time.Second), Payload: event.Record("a")},
		event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(-time.Second), Payload: event.Record("b")},
		event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(time.Hour), Payload: event.Record("later")},
	))

	n, err := r.Tick(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, proc.seenCount())

	// The future event is still queued for a later tick.
	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestRunner_TickPushesProducedEvents(t *testing.T) {
	q := &memQueue{}
	r := newRunner(t, q)
	ctx := context.Background()
	now := time.Now()

	proc := &stubProcessor{result: &core.Result{
		Message: "Created 1 scheduled invocations.",
		Success: true,
		Events: []event.Event{
			{Name: event.NameInvoke, ScheduledAt: now.Add(50 * time.Millisecond), Payload: event.Record("run-1-a")},
		},
	}}
	r.Register("scheduleInvocations", proc)

	require.NoError(t, q.Push(ctx, event.Event{Name: "scheduleInvocations", ScheduledAt: now.Add(-time.Second)}))

	_, err := r.Tick(ctx, now)
	require.NoError(t, err)

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	// The produced invoke event becomes due on a later tick.
	popped, err := q.PopDue(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, popped, 1)
	assert.Equal(t, event.NameInvoke, popped[0].Name)
}

func TestRunner_UnregisteredEventIsDropped(t *testing.T) {
	q := &memQueue{}
	r := newRunner(t, q)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, q.Push(ctx,
		event.Event{Name: event.NameDone, ScheduledAt: now.Add(-time.Second), Payload: event.Record("run-1-a")},
	))

	n, err := r.Tick(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestRunner_ProcessorErrorAbortsTick(t *testing.T) {
	q := &memQueue{}
	r := newRunner(t, q)
	ctx := context.Background()
	now := time.Now()

	proc := &stubProcessor{err: errors.New("executed but not recorded")}
	r.Register(event.NameInvoke, proc)

	require.NoError(t, q.Push(ctx,
		event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(-time.Second), Payload: event.Record("run-1-a")},
	))

	_, err := r.Tick(ctx, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executed but not recorded")
}

func TestRunner_RunStopsOnContextCancel(t *testing.T) {
	q := &memQueue{}
	r, err := driver.NewRunner(driver.RunnerOptions{Queue: q, Interval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Run(ctx))
}
