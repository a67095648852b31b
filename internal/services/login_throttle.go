package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginThrottle counts failed logins per key.
type LoginThrottle interface {
	Allowed(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// NoopThrottle never blocks.
type NoopThrottle struct{}

func (NoopThrottle) Allowed(context.Context, string) (bool, error) { return true, nil }
func (NoopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (NoopThrottle) Reset(context.Context, string) error           { return nil }

// RedisLoginThrottle locks a key out for the lockout window after maxAttempts failures.
type RedisLoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int
	lockout     time.Duration
}

func NewRedisLoginThrottle(client redis.Cmdable, maxAttempts int, lockout time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{
		client:      client,
		maxAttempts: maxAttempts,
		lockout:     lockout,
	}
}

func throttleKey(key string) string {
	return "login_failures:" + strings.ToLower(strings.TrimSpace(key))
}

func (t *RedisLoginThrottle) Allowed(ctx context.Context, key string) (bool, error) {
	count, err := t.client.Get(ctx, throttleKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts: %w", err)
	}
	return count < t.maxAttempts, nil
}

func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, key string) error {
	redisKey := throttleKey(key)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, throttleKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
