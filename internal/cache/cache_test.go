package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() expected miss, got %v", err)
	}

	if err := m.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Fatalf("Get() wrong value: %v", got)
	}

	if err := m.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() expected miss after Delete, got %v", err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory(WithClock(func() time.Time { return now }))

	if err := m.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "key"); err != nil {
		t.Fatalf("Get() expected hit before expiry, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() expected miss after expiry, got %v", err)
	}
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", 1, 0)
	_ = m.Set(ctx, "b", 2, 0)

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() expected miss after Clear, got %v", err)
	}
}

func TestLRU_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	l, err := NewLRU(2)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	_ = l.Set(ctx, "a", 1, 0)
	_ = l.Set(ctx, "b", 2, 0)
	_ = l.Set(ctx, "c", 3, 0)

	if _, err := l.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() expected oldest entry evicted, got %v", err)
	}
	if got, err := l.Get(ctx, "c"); err != nil || got != 3 {
		t.Fatalf("Get() expected newest entry, got %v %v", got, err)
	}
}

func TestGetOrCompute_HitMissObservable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	compute := func() (any, error) {
		calls++
		return "computed", nil
	}

	value, hit, err := GetOrCompute(ctx, m, "key", 0, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if hit {
		t.Fatalf("GetOrCompute() first call must be a miss")
	}
	if value != "computed" || calls != 1 {
		t.Fatalf("GetOrCompute() wrong first result: %v calls=%d", value, calls)
	}

	value, hit, err = GetOrCompute(ctx, m, "key", 0, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if !hit {
		t.Fatalf("GetOrCompute() second call must be a hit")
	}
	if calls != 1 {
		t.Fatalf("GetOrCompute() must not recompute on hit, calls=%d", calls)
	}
	_ = value
}

func TestGetOrCompute_InvalidateForcesRecompute(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _, _ = GetOrCompute(ctx, m, "key", 0, compute)
	if err := m.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, hit, err := GetOrCompute(ctx, m, "key", 0, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if hit || calls != 2 {
		t.Fatalf("GetOrCompute() expected recompute after invalidation, hit=%v calls=%d", hit, calls)
	}
}

func TestGetOrCompute_NilProvider(t *testing.T) {
	value, hit, err := GetOrCompute(context.Background(), nil, "key", 0, func() (any, error) {
		return 42, nil
	})
	if err != nil || hit || value != 42 {
		t.Fatalf("GetOrCompute() nil provider: value=%v hit=%v err=%v", value, hit, err)
	}
}

func TestGetOrCompute_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")

	if _, _, err := GetOrCompute(ctx, m, "key", 0, func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute() expected compute error, got %v", err)
	}
	if _, err := m.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetOrCompute() must not cache failures")
	}
}

func TestKey_StableAndDistinct(t *testing.T) {
	a := Key("content", "opts")
	b := Key("content", "opts")
	c := Key("content", "other")

	if a != b {
		t.Fatalf("Key() expected stable signatures, got %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("Key() expected distinct signatures for distinct parts")
	}
	if d := Key("contentopts"); d == a {
		t.Fatalf("Key() must separate parts, got colliding signature")
	}
}
