package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyGuard claims client supplied request keys.
type IdempotencyGuard interface {
	// Claim returns false when the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release frees a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}

type RedisIdempotency struct {
	rdb *redis.Client
}

func NewRedisIdempotency(rdb *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb}
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency-key:%s", key)
}

func (g *RedisIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	// SETNX makes check and claim a single step
	return g.rdb.SetNX(ctx, idempotencyKey(key), "exists", idempotencyTTL).Result()
}

func (g *RedisIdempotency) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, idempotencyKey(key)).Err()
}

// NoopIdempotency accepts every key. It is used when Redis is not configured.
type NoopIdempotency struct{}

func (NoopIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (NoopIdempotency) Release(ctx context.Context, key string) error {
	return nil
}
