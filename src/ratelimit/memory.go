package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key timestamp windows in-process. Single-instance
// deployments only; multi-instance deployments share state via RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		requests: make(map[string][]time.Time),
		stop:     make(chan struct{}),
	}

	// Drop idle keys periodically so the map does not grow unbounded.
	go func() {
		ticker := time.NewTicker(Window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ms.cleanup(time.Now())
			case <-ms.stop:
				return
			}
		}
	}()

	return ms
}

// Close stops the cleanup goroutine. The store stays usable; idle keys just
// stop being swept. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) Admit(_ context.Context, key string, ceiling int, window time.Duration, now time.Time) (Decision, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	valid := ms.requests[key][:0:0]
	for _, t := range ms.requests[key] {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= ceiling {
		ms.requests[key] = valid
		retry := window - now.Sub(valid[0])
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	ms.requests[key] = append(valid, now)
	return Decision{Allowed: true}, nil
}

func (ms *MemoryStore) cleanup(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key, times := range ms.requests {
		valid := times[:0:0]
		for _, t := range times {
			if now.Sub(t) < Window {
				valid = append(valid, t)
			}
		}
		if len(valid) == 0 {
			delete(ms.requests, key)
		} else {
			ms.requests[key] = valid
		}
	}
}
