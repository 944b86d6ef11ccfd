// Package ratelimit enforces a per-key request ceiling over a rolling
// window. The decision is one atomic read-modify-write per store, safe under
// concurrent admission for the same key.
package ratelimit

import (
	"context"
	"time"
)

// Window is the rolling admission window.
const Window = 60 * time.Second

// Decision is the outcome of one admission attempt.
type Decision struct {
	Allowed bool
	// RetryAfter is how long the caller should wait before retrying;
	// only meaningful when Allowed is false.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds the retry hint up to whole seconds, minimum 1.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Store performs the atomic admit for one backend. Implementations must
// purge timestamps older than the window and either append the current
// timestamp (admit) or report how long until the oldest retained one ages
// out (deny) in a single atomic step.
type Store interface {
	Admit(ctx context.Context, key string, ceiling int, window time.Duration, now time.Time) (Decision, error)
}

// Limiter applies a sliding-window ceiling through a pluggable store.
type Limiter struct {
	store   Store
	ceiling int
	now     func() time.Time
}

func New(store Store, ceiling int) *Limiter {
	return &Limiter{store: store, ceiling: ceiling, now: time.Now}
}

// Admit decides one request for key. Store errors fail open: an unreachable
// shared store must not take the whole service down with it.
func (l *Limiter) Admit(ctx context.Context, key string) Decision {
	d, err := l.store.Admit(ctx, key, l.ceiling, Window, l.now())
	if err != nil {
		return Decision{Allowed: true}
	}
	return d
}

// AdmitWithCeiling is Admit with a per-call ceiling override, used by the
// non-production test toggle.
func (l *Limiter) AdmitWithCeiling(ctx context.Context, key string, ceiling int) Decision {
	d, err := l.store.Admit(ctx, key, ceiling, Window, l.now())
	if err != nil {
		return Decision{Allowed: true}
	}
	return d
}
