package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys are day-scoped, so INCR alone is the whole atomic decision; the TTL
// only garbage-collects keys after the day has passed.
const keyTTL = 48 * time.Hour

// RedisStore shares daily quota counters across instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (rs *RedisStore) Incr(ctx context.Context, key, day string) (int64, error) {
	redisKey := fmt.Sprintf("quota:%s:%s", key, day)
	n, err := rs.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("quota: redis incr: %w", err)
	}
	if n == 1 {
		rs.rdb.Expire(ctx, redisKey, keyTTL)
	}
	return n, nil
}
