package cache

import "log/slog"

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictDead marks a Belady victim that is never requested again.
	EvictDead EvictReason = iota
	// EvictFarthest marks a Belady victim whose next request is the farthest away.
	EvictFarthest
	// EvictCold marks a LIRS victim, the least recently used resident HIR entry.
	EvictCold
)

func (r EvictReason) String() string {
	switch r {
	case EvictDead:
		return "dead"
	case EvictFarthest:
		return "farthest"
	case EvictCold:
		return "cold"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Promote is signalled when LIRS moves a cold (HIR) entry into the hot
	// (LIR) set, demoting the stack-bottom LIR entry in exchange.
	Promote()
	Size(entries int)
}

// Hooks carries the observability options shared by every engine.
// Zero values are safe; see Defaults.
type Hooks[K comparable, V any] struct {
	// Metrics receives Hit/Miss/Evict/Promote/Size signals. Nil => NoopMetrics.
	Metrics Metrics

	// OnEvict is called after an entry has left the cache.
	OnEvict func(k K, v V, reason EvictReason)

	// Logger receives Debug-level decisions (victims, promotions).
	// Nil => a logger that discards everything.
	Logger *slog.Logger
}

// Defaults returns a copy of h with nil fields replaced by no-op values.
func (h Hooks[K, V]) Defaults() Hooks[K, V] {
	if h.Metrics == nil {
		h.Metrics = NoopMetrics{}
	}
	if h.Logger == nil {
		h.Logger = slog.New(slog.DiscardHandler)
	}
	return h
}

// Evicted reports an eviction to Metrics and OnEvict.
func (h Hooks[K, V]) Evicted(k K, v V, reason EvictReason) {
	h.Metrics.Evict(reason)
	if cb := h.OnEvict; cb != nil {
		cb(k, v, reason)
	}
}
