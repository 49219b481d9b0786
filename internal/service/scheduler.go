// Package service provides the business logic for the invoker load-run system:
// the batch scheduler and the invocation worker.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/domain/model"
)

// ScheduleService emits bounded batches of invocation records and invoke events,
// re-emitting a self-addressed continuation event until the run target is
// reached. Progress lives in the continuation event's payload, never in process
// state, so a run survives restarts as long as the queue is durable.
type ScheduleService struct {
	store        core.InvocationStore
	users        core.UserDirectory
	cfg          core.RunConfig
	timeProvider data.TimeProvider
	logger       *slog.Logger
}

// ScheduleServiceOptions holds the dependencies for creating a ScheduleService.
type ScheduleServiceOptions struct {
	Store        core.InvocationStore
	Users        core.UserDirectory
	Config       *core.RunConfig
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// NewScheduleService creates a new ScheduleService with the given dependencies.
func NewScheduleService(opts ScheduleServiceOptions) *ScheduleService {
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Config == nil {
		defaultCfg := core.DefaultRunConfig()
		opts.Config = &defaultCfg
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ScheduleService{
		store:        opts.Store,
		users:        opts.Users,
		cfg:          *opts.Config,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger,
	}
}

// ProcessEvent schedules the next batch of invocations.
//
// The delivered event carries the number of invocations already scheduled (zero
// when absent). Each iteration persists one scheduled record and emits one invoke
// event paced TimeBetweenInvocations after the previous one. Pacing is cumulative
// across batches: the batch base time is the delivered event's scheduled time,
// and the continuation event carries the last computed time forward.
func (s *ScheduleService) ProcessEvent(ctx context.Context, ev event.Event) (*core.Result, error) {
	total, ok := ev.Payload.ProgressCount()
	if !ok {
		return nil, fmt.Errorf("schedule event %q carried a non-progress payload", ev.Name)
	}

	s.logger.DebugContext(ctx, "scheduling next batch",
		"already_scheduled", total,
		"batch_size", s.cfg.BatchSize,
		"target", s.cfg.InvocationTarget)

	scheduled := ev.ScheduledAt
	if scheduled.IsZero() {
		scheduled = s.timeProvider.Now()
	}

	events := make([]event.Event, 0, s.cfg.BatchSize+1)
	localCount := 0
	for i := 0; i < s.cfg.BatchSize && total < s.cfg.InvocationTarget; i++ {
		name := s.cfg.RunID + "-" + uuid.NewString()
		scheduled = scheduled.Add(s.cfg.TimeBetweenInvocations)

		if invokeEv, created := s.scheduleOne(ctx, scheduleParams{
			Name:        name,
			Total:       total,
			ScheduledAt: scheduled,
		}); created {
			events = append(events, invokeEv)
		}

		// Counters advance even when the insert was skipped: the continuation
		// chain stays monotonic and a wedged store cannot loop the run forever.
		localCount++
		total++
	}

	if total < s.cfg.InvocationTarget {
		events = append(events, event.Event{
			Name:        ev.Name,
			ScheduledAt: scheduled,
			Payload:     event.Progress(total),
		})
	}

	s.logger.DebugContext(ctx, "scheduled batch",
		"batch_count", localCount,
		"total_scheduled", total,
		"rescheduled", total < s.cfg.InvocationTarget)

	return &core.Result{
		Message: fmt.Sprintf("Created %d scheduled invocations.", total),
		Events:  events,
		Success: true,
	}, nil
}

type scheduleParams struct {
	Name        string
	Total       int
	ScheduledAt time.Time
}

// scheduleOne persists one scheduled record and builds its invoke event. A
// failed user lookup or insert skips the event for this slot; the batch keeps
// going.
func (s *ScheduleService) scheduleOne(ctx context.Context, params scheduleParams) (event.Event, bool) {
	user, err := s.users.RandomUser(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping invocation, no user available",
			"invocation", params.Name, "error", err)
		return event.Event{}, false
	}

	inv := &model.Invocation{
		Name:     params.Name,
		Username: user.Username,
		Message:  s.renderMessage(params.Total),
		State:    model.StateScheduled,
	}
	if err := s.store.Create(ctx, inv); err != nil {
		// No invoke event may be emitted for a record that was never durably
		// created.
		s.logger.WarnContext(ctx, "skipping invocation, record not persisted",
			"invocation", params.Name, "error", err)
		return event.Event{}, false
	}

	return event.Event{
		Name:        event.NameInvoke,
		ScheduledAt: params.ScheduledAt,
		Payload:     event.Record(params.Name),
	}, true
}

// renderMessage resolves the configured message pattern: patterns containing a
// fmt verb are formatted with the running total, anything else is used verbatim.
func (s *ScheduleService) renderMessage(total int) string {
	if strings.ContainsRune(s.cfg.MessagePattern, '%') {
		return fmt.Sprintf(s.cfg.MessagePattern, total)
	}
	return s.cfg.MessagePattern
}
