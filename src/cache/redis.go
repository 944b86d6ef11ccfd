package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "investigate:"

// RedisStore is the shared backend; TTL enforcement rides on Redis key expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rs.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	return value, true, nil
}

func (rs *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rs.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}
