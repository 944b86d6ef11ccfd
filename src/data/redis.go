package data

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// MustRedis connects to the shared key-value store or exits. Only called
// when a Redis URL is configured; without one the service runs on its
// in-process stores.
func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}
