package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript performs purge + count + conditional append as one atomic
// server-side operation, so concurrent admissions for the same key from
// multiple instances never interleave a read with a separate write.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local ceiling = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= ceiling then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window
	if oldest[2] then
		retry = window - (now - tonumber(oldest[2]))
	end
	return {0, retry}
end

local seq = redis.call('INCR', key .. ':seq')
redis.call('ZADD', key, now, now .. '-' .. seq)
redis.call('PEXPIRE', key, window)
redis.call('PEXPIRE', key .. ':seq', window)
return {1, 0}
`)

// RedisStore shares rate-limit state across instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (rs *RedisStore) Admit(ctx context.Context, key string, ceiling int, window time.Duration, now time.Time) (Decision, error) {
	res, err := admitScript.Run(ctx, rs.rdb,
		[]string{"ratelimit:" + key},
		now.UnixMilli(), window.Milliseconds(), ceiling,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
