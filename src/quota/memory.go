package quota

import (
	"context"
	"sync"
)

type dayCount struct {
	day   string
	count int64
}

// MemoryStore keeps per-key daily counters in-process. The day rollover
// happens under the same lock as the increment, so a stale count can never
// survive into a new day.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]dayCount
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]dayCount)}
}

func (ms *MemoryStore) Incr(_ context.Context, key, day string) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := ms.counts[key]
	if entry.day != day {
		entry = dayCount{day: day}
	}
	entry.count++
	ms.counts[key] = entry
	return entry.count, nil
}
