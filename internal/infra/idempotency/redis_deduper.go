// Package idempotency implements the processed-event marker on Redis.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"foodbridge/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultMarkerTTL = 7 * 24 * time.Hour

// redisDeduper tracks processed event IDs per consumer using Redis SETNX
// with a TTL. Keys follow the `fb:events:processed:<consumer>:<event_id>`
// pattern. The TTL only has to outlive the delivery platform's redelivery
// window, not the lifetime of the event.
type redisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper builds an idempotency guard that marks events as processed for the given TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) (service.EventDeduper, error) {
	if client == nil {
		return nil, errors.New("redis client required for event deduper")
	}
	if ttl <= 0 {
		ttl = defaultMarkerTTL
	}

	return &redisDeduper{client: client, ttl: ttl}, nil
}

// CheckAndMarkProcessed atomically marks the event as processed for the
// consumer. SETNX returning false means another delivery got there first.
func (d *redisDeduper) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	if consumer == "" || eventID == "" {
		return false, errors.New("consumer and event ID are required")
	}

	set, err := d.client.SetNX(ctx, markerKey(consumer, eventID), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to set processed-event marker")
	}

	return !set, nil
}

// Forget removes the processed marker so a failed handler can be retried.
func (d *redisDeduper) Forget(ctx context.Context, consumer, eventID string) error {
	if err := d.client.Del(ctx, markerKey(consumer, eventID)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete processed-event marker")
	}

	return nil
}

func markerKey(consumer, eventID string) string {
	return fmt.Sprintf("fb:events:processed:%s:%s", consumer, eventID)
}
