package cache

import (
	"testing"
	"time"
)

// fakeClock is a hand-advanced clock for expiry tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStoreHitAndMiss(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewWithClock[string, int](time.Hour, clk.Now)

	if _, ok := s.Get("a"); ok {
		t.Fatal("expected miss on empty store")
	}
	s.Set("a", 42)
	got, ok := s.Get("a")
	if !ok || got != 42 {
		t.Fatalf("got %d ok=%v, want 42 hit", got, ok)
	}
}

func TestStoreExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewWithClock[string, string](time.Hour, clk.Now)
	s.Set("k", "v")

	clk.Advance(time.Hour - time.Second)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clk.Advance(time.Second)
	if _, ok := s.Get("k"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry not evicted, len=%d", s.Len())
	}
}

func TestStoreSetRefreshesTTL(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewWithClock[string, int](time.Minute, clk.Now)
	s.Set("k", 1)

	clk.Advance(45 * time.Second)
	s.Set("k", 2)

	clk.Advance(45 * time.Second)
	got, ok := s.Get("k")
	if !ok || got != 2 {
		t.Fatalf("got %d ok=%v, want refreshed entry 2", got, ok)
	}
}

func TestStoreZeroTTLDisablesCaching(t *testing.T) {
	s := New[string, int](0)
	s.Set("k", 1)
	if _, ok := s.Get("k"); ok {
		t.Fatal("zero-TTL store must never serve entries")
	}
	if s.Len() != 0 {
		t.Fatalf("zero-TTL store stored an entry, len=%d", s.Len())
	}
}

func TestStoreDelete(t *testing.T) {
	s := New[string, int](time.Hour)
	s.Set("k", 1)
	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Fatal("deleted entry still served")
	}
}
