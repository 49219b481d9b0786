package eventqueue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/invoker/internal/adapters/eventqueue"
	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/testutil"
)

func setupQueue(t *testing.T) (*eventqueue.RedisQueue, context.Context) {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	ctx := context.Background()

	key := "invoker:events:test:" + t.Name()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), key).Err()
		_ = client.Close()
	})
	return eventqueue.NewRedisQueue(client, key), ctx
}

func TestRedisQueue_PopReturnsOnlyDueEvents(t *testing.T) {
	q, ctx := setupQueue(t)

	now := time.Now().Truncate(time.Millisecond)
	due := event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(-time.Second), Payload: event.Record("run-1-a")}
	future := event.Event{Name: event.NameInvoke, ScheduledAt: now.Add(time.Hour), Payload: event.Record("run-1-b")}

	require.NoError(t, q.Push(ctx, due, future))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	popped, err := q.PopDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, popped, 1)
	name, ok := popped[0].Payload.RecordName()
	require.True(t, ok)
	assert.Equal(t, "run-1-a", name)

	// The future event stays queued.
	size, err = q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestRedisQueue_PopOrdersByScheduledTime(t *testing.T) {
	q, ctx := setupQueue(t)

	now := time.Now().Truncate(time.Millisecond)
	evs := []event.Event{
		{Name: event.NameInvoke, ScheduledAt: now.Add(-time.Second), Payload: event.Record("run-1-c")},
		{Name: event.NameInvoke, ScheduledAt: now.Add(-3 * time.Second), Payload: event.Record("run-1-a")},
		{Name: event.NameInvoke, ScheduledAt: now.Add(-2 * time.Second), Payload: event.Record("run-1-b")},
	}
	require.NoError(t, q.Push(ctx, evs...))

	popped, err := q.PopDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, popped, 3)

	var got []string
	for _, ev := range popped {
		name, ok := ev.Payload.RecordName()
		require.True(t, ok)
		got = append(got, name)
	}
	assert.Equal(t, []string{"run-1-a", "run-1-b", "run-1-c"}, got)
}

func TestRedisQueue_PopHonorsLimit(t *testing.T) {
	q, ctx := setupQueue(t)

	now := time.Now().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(ctx, event.Event{
			Name:        "scheduleInvocations",
			ScheduledAt: now.Add(-time.Duration(i+1) * time.Second),
			Payload:     event.Progress(i),
		}))
	}

	popped, err := q.PopDue(ctx, now, 2)
	require.NoError(t, err)
	assert.Len(t, popped, 2)

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}

func TestRedisQueue_PopDue_InvalidLimit(t *testing.T) {
	q, ctx := setupQueue(t)

	_, err := q.PopDue(ctx, time.Now(), 0)
	assert.Error(t, err)
}

func TestRedisQueue_PushNothingIsNoop(t *testing.T) {
	q, ctx := setupQueue(t)

	require.NoError(t, q.Push(ctx))
	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
