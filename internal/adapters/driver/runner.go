// Package driver provides the event loop that delivers due events to their
// processors. It owns dispatch and fan-out only; retry/backoff policy stays with
// the processors' own semantics (there is none: a failed call is terminal).
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/domain/event"
)

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Queue core.EventQueue
	// Interval is the tick period for polling the queue. Defaults to 100ms.
	Interval time.Duration
	// PopLimit bounds how many due events one tick may claim. Defaults to 256.
	PopLimit int
	// Concurrency bounds in-flight processors per tick. Defaults to 8; invoke
	// events for different records are independent and may complete out of order.
	Concurrency  int
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// Runner polls the event queue and dispatches due events to registered
// processors. Events produced by a processor are pushed back to the queue.
type Runner struct {
	queue        core.EventQueue
	procs        map[string]core.Processor
	interval     time.Duration
	popLimit     int
	concurrency  int
	timeProvider data.TimeProvider
	logger       *slog.Logger
}

// NewRunner creates a new driver runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Queue == nil {
		return nil, errors.New("event queue is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.PopLimit <= 0 {
		opts.PopLimit = 256
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Runner{
		queue:        opts.Queue,
		procs:        make(map[string]core.Processor),
		interval:     opts.Interval,
		popLimit:     opts.PopLimit,
		concurrency:  opts.Concurrency,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger,
	}, nil
}

// Register routes events with the given name to the processor.
func (r *Runner) Register(name string, p core.Processor) {
	r.procs[name] = p
}

// Seed pushes the initial event of a run unless the queue already holds events
// (a restarted process resumes the queued run instead of starting over).
func (r *Runner) Seed(ctx context.Context, ev event.Event) error {
	size, err := r.queue.Size(ctx)
	if err != nil {
		return fmt.Errorf("check queue before seeding: %w", err)
	}
	if size > 0 {
		r.logger.InfoContext(ctx, "queue not empty, resuming existing run", "queued", size)
		return nil
	}
	if err := r.queue.Push(ctx, ev); err != nil {
		return fmt.Errorf("seed initial event: %w", err)
	}
	r.logger.InfoContext(ctx, "seeded initial event", "event", ev.Name)
	return nil
}

// Run polls the queue until the context is cancelled or a processor reports an
// unrecoverable error.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting event driver",
		"interval", r.interval, "concurrency", r.concurrency)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "event driver stopping")
			return nil
		case <-ticker.C:
			if _, err := r.Tick(ctx, r.timeProvider.Now()); err != nil {
				return fmt.Errorf("event driver tick: %w", err)
			}
		}
	}
}

// Tick pops due events and dispatches each to its processor with bounded
// concurrency. Returns the number of events dispatched.
func (r *Runner) Tick(ctx context.Context, now time.Time) (int, error) {
	due, err := r.queue.PopDue(ctx, now, r.popLimit)
	if err != nil {
		return 0, fmt.Errorf("pop due events: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, ev := range due {
		g.Go(func() error {
			return r.dispatch(gctx, ev)
		})
	}
	if err := g.Wait(); err != nil {
		return len(due), err
	}
	return len(due), nil
}

// dispatch routes one event. A missing processor is terminal for the event:
// done events legitimately have no further processing hooks, anything else is a
// routing problem worth a warning.
func (r *Runner) dispatch(ctx context.Context, ev event.Event) error {
	proc, ok := r.procs[ev.Name]
	if !ok {
		if ev.Name == event.NameDone {
			r.logger.DebugContext(ctx, "run event complete", "event", ev.Name)
		} else {
			r.logger.WarnContext(ctx, "no processor registered for event", "event", ev.Name)
		}
		return nil
	}

	result, err := proc.ProcessEvent(ctx, ev)
	if err != nil {
		// Unrecoverable by contract (e.g. work executed but not recorded);
		// surface it and let the run abort rather than hiding it in a report.
		return fmt.Errorf("process event %q: %w", ev.Name, err)
	}
	if result == nil {
		return nil
	}

	if len(result.Events) > 0 {
		if pushErr := r.queue.Push(ctx, result.Events...); pushErr != nil {
			return fmt.Errorf("push produced events for %q: %w", ev.Name, pushErr)
		}
	}

	if result.Success {
		r.logger.InfoContext(ctx, "event processed",
			"event", ev.Name, "result", result.Message, "produced", len(result.Events))
	} else {
		r.logger.WarnContext(ctx, "event skipped or failed",
			"event", ev.Name, "result", result.Message)
	}
	return nil
}
