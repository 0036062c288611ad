// Package cache provides a small in-process TTL store. Entries live entirely
// in memory; nothing is persisted across restarts. The clock is injected so
// expiry is testable without sleeping.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time. The zero-value store uses the wall clock.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a concurrency-safe map with per-store TTL. A zero TTL disables
// caching entirely: Set becomes a no-op and Get always misses.
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[K]entry[V]
}

// New builds a store with the given TTL on the wall clock.
func New[K comparable, V any](ttl time.Duration) *Store[K, V] {
	return NewWithClock[K, V](ttl, time.Now)
}

// NewWithClock builds a store with an explicit clock.
func NewWithClock[K comparable, V any](ttl time.Duration, now Clock) *Store[K, V] {
	return &Store[K, V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value for key if present and not yet expired.
// Expired entries are removed on access.
func (s *Store[K, V]) Get(key K) (V, bool) {
	var zero V
	if s.ttl <= 0 {
		return zero, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the store's TTL, replacing any previous
// entry.
func (s *Store[K, V]) Set(key K, value V) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Delete drops the entry for key if present.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports the number of stored entries, expired or not.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
