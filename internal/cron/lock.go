package cron

import (
	"context"
	"time"

	"foodbridge/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Minute

// Lock coordinates exclusive cron runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RedisLock implements Lock using Redis SETNX + TTL.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to acquire sweep lock")
	}
	if ok {
		l.owner = owner
	}

	return ok, nil
}

// Release frees the lock only if the owner value still matches, so a lock
// that expired and was re-acquired elsewhere is never deleted from here.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}

	value, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return errors.Wrap(err, "failed to read sweep lock owner")
	}
	if value != l.owner {
		return nil
	}

	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return errors.Wrap(err, "failed to release sweep lock")
	}
	l.owner = ""

	return nil
}
