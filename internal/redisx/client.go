package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// AcquireLock: SET NX sederhana untuk mutual exclusion per key (mis. per reference
// webhook). Return false kalau lock sedang dipegang delivery lain.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, "1", ttl).Result()
}

func ReleaseLock(ctx context.Context, rdb *redis.Client, key string) {
	_ = rdb.Del(ctx, key).Err()
}
