// Package quota enforces a per-key daily request ceiling. Days are calendar
// days in UTC; the upstream behavior left the timezone unspecified, so UTC
// is the documented choice.
package quota

import (
	"context"
	"time"
)

// Store atomically increments the counter for (key, day) and returns the new
// count. The returned value crossing the ceiling is how a denial is
// detected, so the increment itself must be the only read-modify-write.
type Store interface {
	Incr(ctx context.Context, key, day string) (int64, error)
}

// Tracker applies a daily ceiling through a pluggable store.
type Tracker struct {
	store   Store
	ceiling int
	now     func() time.Time
}

func New(store Store, ceiling int) *Tracker {
	return &Tracker{store: store, ceiling: ceiling, now: time.Now}
}

// Consume spends one unit of key's daily quota. Exactly `ceiling` calls
// succeed per key per UTC day: the increment that crosses the ceiling is
// itself denied. Store errors fail open; with no count to go on, the full
// ceiling is reported rather than a misleading zero.
func (t *Tracker) Consume(ctx context.Context, key string) (remaining int, allowed bool) {
	day := t.now().UTC().Format("2006-01-02")
	n, err := t.store.Incr(ctx, key, day)
	if err != nil {
		return t.ceiling, true
	}
	if n > int64(t.ceiling) {
		return 0, false
	}
	return t.ceiling - int(n), true
}

// Ceiling returns the configured daily ceiling.
func (t *Tracker) Ceiling() int {
	return t.ceiling
}
