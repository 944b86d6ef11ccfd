package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is the single-instance backend: a guarded map with a janitor
// goroutine sweeping expired entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ms.sweep(time.Now())
			case <-ms.stop:
				return
			}
		}
	}()

	return ms
}

// Close stops the janitor goroutine. Reads stay correct without it; Get
// checks expiry itself. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	ms.mu.RLock()
	e, ok := ms.entries[key]
	ms.mu.RUnlock()

	if !ok || time.Now().After(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (ms *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// Copy so post-hoc mutation of the caller's buffer cannot change what a
	// later hit returns.
	stored := make([]byte, len(value))
	copy(stored, value)

	ms.mu.Lock()
	ms.entries[key] = entry{value: stored, expires: time.Now().Add(ttl)}
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) sweep(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for key, e := range ms.entries {
		if now.After(e.expires) {
			delete(ms.entries, key)
		}
	}
}
