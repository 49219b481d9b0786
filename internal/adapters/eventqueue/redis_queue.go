// Package eventqueue provides the Redis-backed event queue the driver pops due
// events from. Events live in a sorted set scored by their scheduled time, so a
// durably queued run survives process restarts.
package eventqueue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/domain/event"
)

// DefaultKey is the sorted-set key used when none is configured.
const DefaultKey = "invoker:events"

// RedisQueue implements core.EventQueue on a Redis sorted set.
//
// Delivery is at-least-once: a pop that crashes between ZRANGEBYSCORE and ZREM
// can re-deliver an event. That is the duplicate-delivery race the worker's
// eligibility guard exists for; nothing here needs to be stronger.
type RedisQueue struct {
	client redis.UniversalClient
	key    string
}

var _ core.EventQueue = (*RedisQueue)(nil)

// NewRedisQueue creates a queue on the given key ("" uses DefaultKey).
func NewRedisQueue(client redis.UniversalClient, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key}
}

// Push enqueues events scored by their scheduled time.
func (q *RedisQueue) Push(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(events))
	for _, ev := range events {
		data, err := event.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event for queue: %w", err)
		}
		members = append(members, redis.Z{
			Score:  float64(ev.ScheduledAt.UnixMilli()),
			Member: string(data),
		})
	}

	if err := q.client.ZAdd(ctx, q.key, members...).Err(); err != nil {
		return fmt.Errorf("push events: %w", err)
	}
	return nil
}

// PopDue removes and returns up to limit events whose scheduled time is not
// after now, oldest first.
func (q *RedisQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]event.Event, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	raw, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("pop due events: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	members := make([]any, 0, len(raw))
	events := make([]event.Event, 0, len(raw))
	for _, m := range raw {
		ev, decodeErr := event.Unmarshal([]byte(m))
		if decodeErr != nil {
			return nil, fmt.Errorf("decode queued event: %w", decodeErr)
		}
		events = append(events, ev)
		members = append(members, m)
	}

	if err := q.client.ZRem(ctx, q.key, members...).Err(); err != nil {
		return nil, fmt.Errorf("remove popped events: %w", err)
	}
	return events, nil
}

// Size returns the number of queued events.
func (q *RedisQueue) Size(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue size: %w", err)
	}
	return n, nil
}
