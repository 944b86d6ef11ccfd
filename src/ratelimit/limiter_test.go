package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_SixthRequestDenied(t *testing.T) {
	l := New(NewMemoryStore(), 5)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		assert.True(t, l.Admit(context.Background(), "alice").Allowed, "request %d", i)
	}

	d := l.Admit(context.Background(), "alice")
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfterSeconds(), 0)
	assert.LessOrEqual(t, d.RetryAfterSeconds(), 60)

	// Other keys are unaffected.
	assert.True(t, l.Admit(context.Background(), "bob").Allowed)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := New(NewMemoryStore(), 2)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	l.now = func() time.Time { return now }

	assert.True(t, l.Admit(context.Background(), "k").Allowed)
	now = base.Add(30 * time.Second)
	assert.True(t, l.Admit(context.Background(), "k").Allowed)

	now = base.Add(45 * time.Second)
	d := l.Admit(context.Background(), "k")
	assert.False(t, d.Allowed)
	// Oldest entry ages out at base+60s, so 15s remain.
	assert.Equal(t, 15*time.Second, d.RetryAfter)

	now = base.Add(61 * time.Second)
	assert.True(t, l.Admit(context.Background(), "k").Allowed)
}

func TestLimiter_CeilingOverride(t *testing.T) {
	l := New(NewMemoryStore(), 5)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	assert.True(t, l.AdmitWithCeiling(context.Background(), "k", 1).Allowed)
	assert.False(t, l.AdmitWithCeiling(context.Background(), "k", 1).Allowed)
	// The default ceiling still applies to plain Admit.
	assert.True(t, l.Admit(context.Background(), "k").Allowed)
}

type failingStore struct{}

func (failingStore) Admit(context.Context, string, int, time.Duration, time.Time) (Decision, error) {
	return Decision{}, errors.New("store down")
}

func TestLimiter_FailsOpen(t *testing.T) {
	l := New(failingStore{}, 1)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Admit(context.Background(), "k").Allowed)
	}
}

func TestMemoryStore_CloseStopsCleanup(t *testing.T) {
	ms := NewMemoryStore()
	ms.Close()
	// Idempotent, and the store keeps admitting after shutdown.
	ms.Close()

	d, err := ms.Admit(context.Background(), "k", 1, Window, time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisStore_Admit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d, err := store.Admit(context.Background(), "k", 3, Window, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := store.Admit(context.Background(), "k", 3, Window, base.Add(10*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	// Oldest entry at base ages out 60s later; 50s remain.
	assert.Equal(t, 50*time.Second, d.RetryAfter)

	// After the window passes the oldest entries, admission resumes.
	d, err = store.Admit(context.Background(), "k", 3, Window, base.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisStore_KeysIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d, err := store.Admit(context.Background(), "a", 1, Window, base)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Admit(context.Background(), "a", 1, Window, base)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = store.Admit(context.Background(), "b", 1, Window, base)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestDecisionRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, Decision{Allowed: true}.RetryAfterSeconds())
	assert.Equal(t, 1, Decision{RetryAfter: 200 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 1, Decision{}.RetryAfterSeconds())
	assert.Equal(t, 15, Decision{RetryAfter: 14*time.Second + time.Millisecond}.RetryAfterSeconds())
}
