package cache

// Fetcher produces the page for a key on a cache miss.
// It is the slow path the cache exists to avoid; a returned error is
// propagated to the caller of LookupOrFetch and nothing is cached.
type Fetcher[K comparable, V any] func(k K) (V, error)

// Cache is a bounded page cache with a "lookup-or-fetch" contract.
// Implementations are single-threaded: concurrent callers must serialize
// the whole LookupOrFetch call (see Synchronized).
type Cache[K comparable, V any] interface {
	// LookupOrFetch reports whether k is resident. On a miss the page is
	// produced by fetch (called exactly once) and admitted according to the
	// engine's replacement policy; on a hit fetch is not called.
	// Internal state is updated on every call.
	LookupOrFetch(k K, fetch Fetcher[K, V]) (hit bool, err error)

	// Peek returns the resident page for k without touching any
	// recency or priority bookkeeping.
	Peek(k K) (V, bool)

	// Len returns the number of resident entries.
	Len() int

	// Cap returns the configured capacity in entries.
	Cap() int
}
