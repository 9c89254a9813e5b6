// Package cache defines the contract shared by the page-replacement engines
// of this module: a bounded cache whose only mutating operation is
// "lookup or fetch".
//
// Design
//
//   - Contract: LookupOrFetch(k, fetch) reports whether k was resident. On a
//     miss fetch is called exactly once, and only if it succeeds is the page
//     admitted (evicting a victim first if the cache is full). A failed fetch
//     leaves the engine exactly as it was and its error is returned as is.
//
//   - Engines: package belady implements the offline-optimal MIN policy and
//     needs the whole future request sequence up front; package lirs
//     implements the online LIRS policy. Package policy builds either by name.
//
//   - Storage: engines keep a map for lookups and arena-backed lists
//     (internal/list) for ordering. Belady adds a B-tree ordered by next use.
//     All operations are O(1) expected, or O(log C) for the Belady tree.
//
//   - Errors: construction fails with ErrInvalidCapacity (which matches
//     ErrConfig) or ErrConfig. ErrInvariant reports a defect in an engine's
//     own bookkeeping; the cache should be discarded.
//
//   - Hooks: Metrics receives Hit/Miss/Evict/Promote/Size signals, OnEvict is
//     called for every eviction and Logger receives Debug-level decisions.
//     By default NoopMetrics and a discarding logger are used; plug the
//     metrics/prom adapter to export metrics.
//
// Basic usage
//
//	c, err := lirs.New(lirs.Options[int, []byte]{Capacity: 1024})
//	if err != nil {
//	    return err
//	}
//	hit, err := c.LookupOrFetch(42, func(k int) ([]byte, error) {
//	    return readPage(k) // slow path
//	})
//
// Offline optimum
//
//	c, _ := belady.New(belady.Options[int, []byte]{Capacity: 1024, Trace: requests})
//	for _, k := range requests {
//	    c.LookupOrFetch(k, readPage)
//	}
//
// Thread-safety
//
// Engines are single-threaded. Wrap one with Synchronized to share it
// between goroutines; the whole call, fetch included, runs under one mutex.
package cache
