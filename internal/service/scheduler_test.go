package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/domain/model"
	apperrors "github.com/benchkit/invoker/internal/errors"
	"github.com/benchkit/invoker/internal/mocks"
	"github.com/benchkit/invoker/internal/service"
)

func runConfig() core.RunConfig {
	return core.RunConfig{
		RunID:                  "run-42",
		InvocationTarget:       250,
		BatchSize:              100,
		TimeBetweenInvocations: 50 * time.Millisecond,
		MessagePattern:         "Message %07d",
		ScheduleEventName:      "scheduleInvocations",
	}
}

func newScheduler(
	store core.InvocationStore,
	users core.UserDirectory,
	cfg core.RunConfig,
	now time.Time,
) *service.ScheduleService {
	return service.NewScheduleService(service.ScheduleServiceOptions{
		Store:        store,
		Users:        users,
		Config:       &cfg,
		TimeProvider: data.NewFixedTimeProvider(now),
	})
}

func TestScheduleService_FirstBatchEmitsContinuation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()

	users.EXPECT().RandomUser(gomock.Any()).
		Return(&model.User{Username: "loaduser-0001", Password: "pw"}, nil).
		Times(cfg.BatchSize)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(cfg.BatchSize)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc := newScheduler(store, users, cfg, base)

	result, err := svc.ProcessEvent(context.Background(), event.Event{
		Name:        cfg.ScheduleEventName,
		ScheduledAt: base,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "Created 100 scheduled invocations.", result.Message)

	// One invoke event per slot plus the continuation.
	require.Len(t, result.Events, cfg.BatchSize+1)

	cont := result.Events[len(result.Events)-1]
	assert.Equal(t, cfg.ScheduleEventName, cont.Name)
	progress, ok := cont.Payload.ProgressCount()
	require.True(t, ok)
	assert.Equal(t, 100, progress)

	for i, ev := range result.Events[:cfg.BatchSize] {
		assert.Equal(t, event.NameInvoke, ev.Name)
		name, hasRecord := ev.Payload.RecordName()
		require.True(t, hasRecord)
		assert.True(t, strings.HasPrefix(name, "run-42-"))
		assert.Equal(t, base.Add(time.Duration(i+1)*cfg.TimeBetweenInvocations), ev.ScheduledAt)
	}
	// The continuation picks up where the batch left off so pacing never resets.
	assert.Equal(t, base.Add(100*cfg.TimeBetweenInvocations), cont.ScheduledAt)
}

func TestScheduleService_FinalBatchOmitsContinuation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()

	users.EXPECT().RandomUser(gomock.Any()).
		Return(&model.User{Username: "loaduser-0001"}, nil).Times(50)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(50)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc := newScheduler(store, users, cfg, base)

	result, err := svc.ProcessEvent(context.Background(), event.Event{
		Name:        cfg.ScheduleEventName,
		ScheduledAt: base,
		Payload:     event.Progress(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "Created 250 scheduled invocations.", result.Message)

	// 50 remaining slots, target reached, no continuation.
	require.Len(t, result.Events, 50)
	for _, ev := range result.Events {
		assert.Equal(t, event.NameInvoke, ev.Name)
	}
}

func TestScheduleService_TargetAlreadyReached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()
	cfg.InvocationTarget = 100

	svc := newScheduler(store, users, cfg, time.Now())

	result, err := svc.ProcessEvent(context.Background(), event.Event{
		Name:    cfg.ScheduleEventName,
		Payload: event.Progress(100),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Events)
	assert.Equal(t, "Created 100 scheduled invocations.", result.Message)
}

func TestScheduleService_MessageTemplating(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		total   int
		want    string
	}{
		{"padded counter", "Message %05d", 7, "Message 00007"},
		{"default pattern", "Message %07d", 0, "Message 0000000"},
		{"static message", "hello there", 42, "hello there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockInvocationStore(ctrl)
			users := mocks.NewMockUserDirectory(ctrl)
			cfg := runConfig()
			cfg.BatchSize = 1
			cfg.InvocationTarget = tt.total + 1
			cfg.MessagePattern = tt.pattern

			users.EXPECT().RandomUser(gomock.Any()).
				Return(&model.User{Username: "loaduser-0001"}, nil)

			var created *model.Invocation
			store.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, inv *model.Invocation) error {
					created = inv
					return nil
				})

			svc := newScheduler(store, users, cfg, time.Now())
			_, err := svc.ProcessEvent(context.Background(), event.Event{
				Name:    cfg.ScheduleEventName,
				Payload: event.Progress(tt.total),
			})
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, tt.want, created.Message)
			assert.Equal(t, model.StateScheduled, created.State)
			assert.Equal(t, "loaduser-0001", created.Username)
		})
	}
}

func TestScheduleService_CreateFailureSkipsEventButAdvancesCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()
	cfg.BatchSize = 3
	cfg.InvocationTarget = 10

	users.EXPECT().RandomUser(gomock.Any()).
		Return(&model.User{Username: "loaduser-0001"}, nil).Times(3)

	gomock.InOrder(
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		store.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(apperrors.Conflict("invocation already exists")),
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	svc := newScheduler(store, users, cfg, time.Now())
	result, err := svc.ProcessEvent(context.Background(), event.Event{
		Name: cfg.ScheduleEventName,
	})
	require.NoError(t, err)

	// Two invoke events plus the continuation; the failed slot still counts.
	require.Len(t, result.Events, 3)
	cont := result.Events[2]
	progress, ok := cont.Payload.ProgressCount()
	require.True(t, ok)
	assert.Equal(t, 3, progress)
}

func TestScheduleService_NoUserAvailableSkipsSlot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()
	cfg.BatchSize = 2
	cfg.InvocationTarget = 2

	users.EXPECT().RandomUser(gomock.Any()).
		Return(nil, apperrors.NotFound("no users in directory")).Times(2)

	svc := newScheduler(store, users, cfg, time.Now())
	result, err := svc.ProcessEvent(context.Background(), event.Event{
		Name: cfg.ScheduleEventName,
	})
	require.NoError(t, err)

	// No records were created, so no invoke events; the run still terminates.
	assert.Empty(t, result.Events)
	assert.Equal(t, "Created 2 scheduled invocations.", result.Message)
}

func TestScheduleService_RejectsRecordPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newScheduler(
		mocks.NewMockInvocationStore(ctrl),
		mocks.NewMockUserDirectory(ctrl),
		runConfig(),
		time.Now(),
	)

	_, err := svc.ProcessEvent(context.Background(), event.Event{
		Name:    "scheduleInvocations",
		Payload: event.Record("run-42-abc"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-progress payload")
}

func TestScheduleService_ZeroScheduledAtFallsBackToClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockInvocationStore(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	cfg := runConfig()
	cfg.BatchSize = 1
	cfg.InvocationTarget = 10

	users.EXPECT().RandomUser(gomock.Any()).
		Return(&model.User{Username: "loaduser-0001"}, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	now := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	svc := newScheduler(store, users, cfg, now)

	result, err := svc.ProcessEvent(context.Background(), event.Event{Name: cfg.ScheduleEventName})
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	assert.Equal(t, now.Add(cfg.TimeBetweenInvocations), result.Events[0].ScheduledAt)
}
