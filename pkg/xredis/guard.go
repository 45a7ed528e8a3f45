package xredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is a best-effort "first caller wins" marker built on SETNX. It only
// filters obvious duplicates; the database stays the source of truth.
type Guard struct {
	rdb    *redis.Client
	prefix string
}

func NewGuard(rdb *redis.Client, prefix string) *Guard {
	return &Guard{rdb: rdb, prefix: prefix}
}

// Acquire reports whether this caller set the key. The key expires after ttl.
func (g *Guard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, g.prefix+key, "1", ttl).Result()
}

// Release removes the key so a later attempt can proceed.
func (g *Guard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, g.prefix+key).Err()
}
