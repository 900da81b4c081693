// Package cache provides a short-lived in-memory TTL store used to shield
// external sources from repeated fetches within one refresh window. It is an
// optimization, not a correctness mechanism: every call path must work (just
// slower) with an empty or cleared cache.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is long enough to avoid re-hitting every external source on each
// request and short enough that a user-visible refresh cycle still picks up
// new listings.
const DefaultTTL = 3 * time.Hour

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Store is a process-local TTL cache keyed by source identifier. Expiry is
// checked lazily on read; there is no background eviction.
type Store[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
	now     func() time.Time
}

// New creates a store with the given TTL. A zero or negative ttl falls back
// to DefaultTTL.
func New[T any](ttl time.Duration) *Store[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// Get returns the value stored under key, or ok=false when the key is absent
// or its entry has outlived the TTL. Expired entries are removed on read.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	e, found := s.entries[key]
	s.mu.RUnlock()

	var zero T
	if !found {
		return zero, false
	}
	if s.now().Sub(e.storedAt) > s.ttl {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, still := s.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its TTL window. Last writer wins.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, storedAt: s.now()}
	s.mu.Unlock()
}

// Clear removes every entry, used when an explicit freshness-overriding
// refresh is requested.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry[T])
	s.mu.Unlock()
}

// Len reports the number of stored entries, counting expired ones that have
// not yet been read.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
