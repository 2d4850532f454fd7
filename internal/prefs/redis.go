package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps one hash per visitor. Every write renews the key's TTL, so
// retention is enforced by Redis itself.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func OpenRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("PREFS_REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func redisKey(visitor string) string { return "portfolio:prefs:" + visitor }

func (r *Redis) Get(ctx context.Context, visitor, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, redisKey(visitor), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, visitor, key, value string) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, redisKey(visitor), key, value)
	pipe.Expire(ctx, redisKey(visitor), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// Cleanup has nothing to do; expired hashes are already gone.
func (r *Redis) Cleanup(context.Context, int) (int64, error) { return 0, nil }

func (r *Redis) Close() error { return r.client.Close() }
