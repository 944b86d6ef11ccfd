package main

import (
	"context"
	"log"
	"time"

	"github.com/signalworks/claimcheck/src/cache"
	"github.com/signalworks/claimcheck/src/data"
	"github.com/signalworks/claimcheck/src/quota"
	"github.com/signalworks/claimcheck/src/ratelimit"
)

// Exercises the Redis-backed stores against a live instance. Run with
// REDIS_URL pointing at a disposable database.
func main() {
	rdb := data.MustRedis("redis://localhost:6379/15")
	defer rdb.Close()
	ctx := context.Background()

	// Rate limiter: ceiling 3, fourth admit must be denied.
	rl := ratelimit.NewRedisStore(rdb)
	now := time.Now()
	for i := 0; i < 3; i++ {
		d, err := rl.Admit(ctx, "storage-test", 3, ratelimit.Window, now)
		if err != nil || !d.Allowed {
			log.Fatalf("ratelimit admit %d: allowed=%v err=%v", i, d.Allowed, err)
		}
	}
	d, err := rl.Admit(ctx, "storage-test", 3, ratelimit.Window, now)
	if err != nil {
		log.Fatalf("ratelimit deny: %v", err)
	}
	if d.Allowed {
		log.Fatal("ratelimit: fourth admit should be denied")
	}
	log.Printf("ratelimit ok (retry after %s)", d.RetryAfter)

	// Quota: counters increment per (key, day).
	qs := quota.NewRedisStore(rdb)
	day := now.UTC().Format("2006-01-02")
	n, err := qs.Incr(ctx, "storage-test", day)
	if err != nil {
		log.Fatalf("quota incr: %v", err)
	}
	log.Printf("quota ok (count %d for %s)", n, day)

	// Cache: round trip with TTL.
	cs := cache.NewRedisStore(rdb)
	key := cache.Fingerprint("storage smoke claim", "", nil)
	if err := cs.Set(ctx, key, []byte(`{"verdict":"REAL"}`), time.Minute); err != nil {
		log.Fatalf("cache set: %v", err)
	}
	value, ok, err := cs.Get(ctx, key)
	if err != nil || !ok {
		log.Fatalf("cache get: ok=%v err=%v", ok, err)
	}
	log.Printf("cache ok (%d bytes at %s)", len(value), key)

	log.Print("storage checks passed")
}
