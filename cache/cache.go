package cache

import "sync"

// synchronized serializes every call on an engine with a single mutex.
// The fetch on a miss runs under the lock too: engines are not reentrant
// and a hit/miss branch must never interleave with another call.
type synchronized[K comparable, V any] struct {
	mu sync.Mutex
	c  Cache[K, V]
}

// Synchronized returns a Cache that is safe for concurrent use.
// Fetches are issued one at a time, even for different keys.
func Synchronized[K comparable, V any](c Cache[K, V]) Cache[K, V] {
	if s, ok := c.(*synchronized[K, V]); ok {
		return s
	}
	return &synchronized[K, V]{c: c}
}

// LookupOrFetch runs the wrapped LookupOrFetch under the lock.
func (s *synchronized[K, V]) LookupOrFetch(k K, fetch Fetcher[K, V]) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.LookupOrFetch(k, fetch)
}

// Peek reads a resident page under the lock.
func (s *synchronized[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Peek(k)
}

// Len returns the resident count of the wrapped cache.
func (s *synchronized[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

// Cap returns the capacity of the wrapped cache. It never changes, so no lock is taken.
func (s *synchronized[K, V]) Cap() int { return s.c.Cap() }
