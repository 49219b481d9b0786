package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/domain/model"
	apperrors "github.com/benchkit/invoker/internal/errors"
	"github.com/benchkit/invoker/internal/observability/statsd"
)

// InvokeService consumes one invoke event at a time: it loads the named record,
// validates eligibility, performs the target call, and atomically records the
// terminal outcome. Duplicate or late deliveries resolve into skips because only
// records still in the scheduled state are eligible.
type InvokeService struct {
	store        core.InvocationStore
	users        core.UserDirectory
	caller       core.TargetCaller
	cfg          core.InvokeConfig
	timeProvider data.TimeProvider
	metrics      statsd.Sink
	logger       *slog.Logger
}

// InvokeServiceOptions holds the dependencies for creating an InvokeService.
type InvokeServiceOptions struct {
	Store        core.InvocationStore
	Users        core.UserDirectory
	Caller       core.TargetCaller
	Config       core.InvokeConfig
	TimeProvider data.TimeProvider
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// NewInvokeService creates a new InvokeService with the given dependencies.
func NewInvokeService(opts InvokeServiceOptions) *InvokeService {
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &InvokeService{
		store:        opts.Store,
		users:        opts.Users,
		caller:       opts.Caller,
		cfg:          opts.Config,
		timeProvider: opts.TimeProvider,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

// ProcessEvent handles one invoke event.
//
// Expected business outcomes (missing record, wrong state, missing user) resolve
// into a Result with Success=false and no state mutation. The only hard error is
// bookkeeping loss: the call succeeded but no record matched the conditional
// update, meaning observable work happened without durable confirmation.
func (s *InvokeService) ProcessEvent(ctx context.Context, ev event.Event) (*core.Result, error) {
	name, ok := ev.Payload.RecordName()
	if !ok {
		return nil, fmt.Errorf("invoke event carried a non-record payload")
	}

	inv, result := s.loadEligible(ctx, name)
	if result != nil {
		return result, nil
	}

	user, err := s.users.FindByUsername(ctx, inv.Username)
	if err != nil {
		return s.missingUserResult(ctx, inv, err), nil
	}

	// Only the target call itself is timed; validation and lookups above are
	// deliberately outside the measurement.
	status, callErr := s.timedCall(ctx, user, inv.Message)
	if callErr != nil {
		return s.recordFailure(ctx, name,
			fmt.Sprintf("Target call for %q failed: %v", name, callErr)), nil
	}
	if !status.OK() {
		return s.recordFailure(ctx, name,
			fmt.Sprintf("Target call failed, request resulted in status:%d with error %s",
				status.Code, status.Status)), nil
	}

	applied, err := s.store.UpdateState(ctx, name, model.StateCreated)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal,
			"invocation %q was executed but not recorded", name)
	}
	if !applied {
		// The call happened but there is no row to confirm it against. This is
		// worse than a failed call and must not be hidden in a normal report.
		return nil, apperrors.Internalf("invocation %q was executed but not recorded", name)
	}

	return &core.Result{
		Message: fmt.Sprintf("Invocation %q completed.", name),
		Events: []event.Event{{
			Name:        event.NameDone,
			ScheduledAt: s.timeProvider.Now(),
			Payload:     event.Record(name),
		}},
		Success: true,
	}, nil
}

// loadEligible loads the record and applies the eligibility guard. It returns a
// skip Result when processing must stop, and the record when it may proceed.
func (s *InvokeService) loadEligible(ctx context.Context, name string) (*model.Invocation, *core.Result) {
	inv, err := s.store.FindByName(ctx, name)
	switch {
	case apperrors.IsNotFound(err):
		return nil, skipResult("Skipping processing for %q. Invocation record not found.", name)
	case err != nil:
		return nil, &core.Result{
			Message: fmt.Sprintf("Invocation store unreachable for %q: %v", name, err),
			Success: false,
		}
	case inv.State != model.StateScheduled:
		return nil, skipResult("Skipping processing for %q. Invocation not scheduled.", name)
	case inv.Username == "":
		return nil, skipResult("Skipping processing for %q. Invocation has no username.", name)
	case inv.Message == "":
		return nil, skipResult("Skipping processing for %q. Invocation has no message.", name)
	}
	return inv, nil
}

// missingUserResult reports a user that no longer resolves. By default the
// record stays scheduled; MarkFailedOnMissingUser opts into transitioning it to
// failed so it cannot sit stuck forever.
func (s *InvokeService) missingUserResult(
	ctx context.Context,
	inv *model.Invocation,
	cause error,
) *core.Result {
	if s.cfg.MarkFailedOnMissingUser && apperrors.IsNotFound(cause) {
		if _, err := s.store.UpdateState(ctx, inv.Name, model.StateFailed); err != nil {
			s.logger.WarnContext(ctx, "failed to mark invocation failed",
				"invocation", inv.Name, "error", err)
		}
	}
	return &core.Result{
		Message: fmt.Sprintf("User data not found in local database: %s", inv.Username),
		Success: false,
	}
}

// timedCall performs the target call and emits call timing and outcome metrics.
func (s *InvokeService) timedCall(
	ctx context.Context,
	user *model.User,
	message string,
) (core.CallStatus, error) {
	start := s.timeProvider.Now()
	status, err := s.caller.Invoke(ctx, user, message)
	elapsed := s.timeProvider.Now().Sub(start)

	outcome := "ok"
	if err != nil || !status.OK() {
		outcome = "failed"
	}
	if s.metrics != nil {
		tags := map[string]string{"outcome": outcome}
		s.metrics.Timing("invocation.call", elapsed, tags)
		s.metrics.Count("invocation.calls", 1, tags)
	}
	return status, err
}

// recordFailure transitions the record to failed. The update is best-effort: a
// record that cannot be marked failed is logged, not escalated, because no
// unconfirmed work exists.
func (s *InvokeService) recordFailure(ctx context.Context, name, message string) *core.Result {
	if _, err := s.store.UpdateState(ctx, name, model.StateFailed); err != nil {
		s.logger.WarnContext(ctx, "failed to mark invocation failed",
			"invocation", name, "error", err)
	}
	return &core.Result{Message: message, Success: false}
}

func skipResult(format string, args ...any) *core.Result {
	return &core.Result{
		Message: fmt.Sprintf(format, args...),
		Success: false,
	}
}
