// Package lirs implements the LIRS (Low Inter-reference Recency Set) page cache.
//
// Resident pages are split into a hot set (LIR) that is protected from
// eviction and a small cold set (HIR) that absorbs one-time references.
// A bounded recency stack S records recently referenced keys, resident or
// not, together with their status; a cold page referenced again while it is
// still in S has a low inter-reference recency and is promoted to hot,
// demoting the LIR page at the bottom of S in exchange.
//
// Glossary and invariants:
//
//   - hot:   LIR residents, |hot| <= HotCap().
//   - cold:  HIR residents, |cold| <= ColdCap(); LRU end is the victim.
//   - S:     at most Capacity*StackMultiplier entries, one per key.
//
//   - Every hot key is in S with status LIR.
//
//   - After every operation the bottom of S is LIR (stack pruning),
//     which makes it the O(1) demotion victim.
//
// See the [LIRS paper] (Jiang & Zhang, SIGMETRICS 2002).
//
// [LIRS paper]: https://dl.acm.org/doi/10.1145/511334.511340
package lirs

import (
	"iter"
	"log/slog"
	"math"

	"github.com/IvanBrykalov/pagecache/cache"
)

const (
	// MinimumCapacity defines the lowest capacity accepted by New:
	// one hot and one cold slot.
	MinimumCapacity = 2
	// DefaultHotFraction is the share of capacity given to the hot set.
	DefaultHotFraction = 0.9
	// DefaultStackMultiplier bounds S to twice the capacity.
	DefaultStackMultiplier = 2
)

// Options configures a LIRS cache. Zero values select the defaults.
type Options[K comparable, V any] struct {
	// Capacity is the resident entry limit; must be >= MinimumCapacity.
	Capacity int

	// HotFraction in (0, 1] sizes the hot set as round(Capacity*HotFraction).
	// Both sets are adjusted to hold at least one slot. 0 => DefaultHotFraction.
	HotFraction float64

	// StackMultiplier bounds the recency stack to Capacity*StackMultiplier
	// entries; must be >= 2. 0 => DefaultStackMultiplier.
	StackMultiplier int

	cache.Hooks[K, V]
}

// Cache is a LIRS page cache. It is not safe for concurrent use;
// wrap it with cache.Synchronized if needed.
type Cache[K comparable, V any] struct {
	capacity int
	stack    *stack[K]
	hot      *partition[K, V]
	cold     *partition[K, V]

	hooks cache.Hooks[K, V]
	log   *slog.Logger
}

// New creates a LIRS cache.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	if opt.Capacity < MinimumCapacity {
		return nil, cache.CapacityError(MinimumCapacity, opt.Capacity)
	}
	frac := opt.HotFraction
	if frac == 0 {
		frac = DefaultHotFraction
	}
	if math.IsNaN(frac) || frac <= 0 || frac > 1 {
		return nil, cache.ConfigError("hot fraction must be in (0, 1], got %v", opt.HotFraction)
	}
	mult := opt.StackMultiplier
	if mult == 0 {
		mult = DefaultStackMultiplier
	}
	if mult < DefaultStackMultiplier {
		return nil, cache.ConfigError(
			"stack multiplier must be >=%d, got %d", DefaultStackMultiplier, opt.StackMultiplier)
	}
	szHot, szCold := split(opt.Capacity, frac)
	hooks := opt.Hooks.Defaults()
	return &Cache[K, V]{
		capacity: opt.Capacity,
		stack:    newStack[K](opt.Capacity * mult),
		hot:      newPartition[K, V]("hot", szHot),
		cold:     newPartition[K, V]("cold", szCold),
		hooks:    hooks,
		log:      hooks.Logger.With("cache", "lirs"),
	}, nil
}

// split divides capacity into hot and cold slots, neither of them empty.
func split(capacity int, frac float64) (hot, cold int) {
	hot = min(int(math.Round(float64(capacity)*frac)), capacity)
	cold = capacity - hot
	if cold == 0 {
		cold++
		hot--
	}
	if hot == 0 {
		hot++
		cold--
	}
	return hot, cold
}

// LookupOrFetch references k. On a miss, fetch runs before any state
// changes, so a failed fetch leaves the cache untouched.
func (c *Cache[K, V]) LookupOrFetch(k K, fetch cache.Fetcher[K, V]) (bool, error) {
	switch {
	case c.hot.contains(k):
		c.hooks.Metrics.Hit()
		return true, c.hitHot(k)
	case c.cold.contains(k):
		c.hooks.Metrics.Hit()
		return true, c.hitCold(k)
	}
	c.hooks.Metrics.Miss()

	page, err := fetch(k)
	if err != nil {
		return false, err
	}
	if err := c.miss(k, page); err != nil {
		return false, err
	}
	c.hooks.Metrics.Size(c.Len())
	return false, nil
}

// Peek returns the resident page for k without referencing it.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	if page, ok := c.hot.get(k); ok {
		return page, true
	}
	return c.cold.get(k)
}

// Status reports how k is currently tracked: its LIRS status, whether its
// page is resident and whether it has an entry in the recency stack.
// Non-resident keys outside the stack are reported as HIR.
func (c *Cache[K, V]) Status(k K) (status Status, resident, stacked bool) {
	_, stacked = c.stack.idx[k]
	switch {
	case c.hot.contains(k):
		return LIR, true, stacked
	case c.cold.contains(k):
		return HIR, true, stacked
	}
	return HIR, false, stacked
}

// Len returns the number of resident pages.
func (c *Cache[K, V]) Len() int { return c.hot.len() + c.cold.len() }

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// HotLen returns the number of LIR residents.
func (c *Cache[K, V]) HotLen() int { return c.hot.len() }

// ColdLen returns the number of HIR residents.
func (c *Cache[K, V]) ColdLen() int { return c.cold.len() }

// HotCap returns the hot set size.
func (c *Cache[K, V]) HotCap() int { return c.hot.limit }

// ColdCap returns the cold set size.
func (c *Cache[K, V]) ColdCap() int { return c.cold.limit }

// StackLen returns the number of entries in the recency stack.
func (c *Cache[K, V]) StackLen() int { return c.stack.len() }

// Keys iterates resident keys: hot from MRU to LRU, then cold likewise.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.hot.keys() {
			if !yield(k) {
				return
			}
		}
		for k := range c.cold.keys() {
			if !yield(k) {
				return
			}
		}
	}
}

// -------------------- state machine --------------------

func (c *Cache[K, V]) hitHot(k K) error {
	if err := c.stack.push(k, LIR); err != nil {
		return err
	}
	c.stack.prune()
	c.hot.touch(k)
	return nil
}

func (c *Cache[K, V]) hitCold(k K) error {
	if c.stack.contains(k) {
		if err := c.stack.push(k, LIR); err != nil {
			return err
		}
		c.stack.prune()
		return c.promote(k)
	}
	if err := c.stack.push(k, HIR); err != nil {
		return err
	}
	c.stack.prune()
	c.cold.touch(k)
	return nil
}

func (c *Cache[K, V]) miss(k K, page V) error {
	switch {
	case !c.hot.full():
		if err := c.stack.push(k, LIR); err != nil {
			return err
		}
		c.stack.prune()
		return c.hot.insert(k, page)
	case !c.cold.full():
		if err := c.stack.push(k, HIR); err != nil {
			return err
		}
		c.stack.prune()
		return c.cold.insert(k, page)
	}

	if err := c.evictCold(); err != nil {
		return err
	}
	if c.stack.contains(k) {
		if err := c.stack.push(k, LIR); err != nil {
			return err
		}
		c.stack.prune()
		if err := c.cold.insert(k, page); err != nil {
			return err
		}
		return c.promote(k)
	}
	if err := c.stack.push(k, HIR); err != nil {
		return err
	}
	c.stack.prune()
	return c.cold.insert(k, page)
}

// evictCold drops the LRU cold resident. Its stack entry, if any, stays
// behind as non-resident history.
func (c *Cache[K, V]) evictCold() error {
	victim, ok := c.cold.lru()
	if !ok {
		return cache.InvariantError("lirs: cache full with an empty cold set")
	}
	page, err := c.cold.remove(victim)
	if err != nil {
		return err
	}
	c.log.Debug("evict", "key", victim, "stacked", c.stack.contains(victim))
	c.hooks.Evicted(victim, page, cache.EvictCold)
	return nil
}

// promote swaps residency of k (cold, now LIR on top of S) with the LIR
// entry at the bottom of S, which is demoted to HIR and pruned away.
func (c *Cache[K, V]) promote(k K) error {
	bottom, ok := c.stack.bottom()
	if !ok || bottom.status != LIR || bottom.key == k {
		return cache.InvariantError("lirs: no LIR demotion victim below %v", k)
	}
	demoted := bottom.key
	if err := c.stack.setStatus(demoted, HIR); err != nil {
		return err
	}
	c.stack.prune()

	page, err := c.cold.remove(k)
	if err != nil {
		return err
	}
	demotedPage, err := c.hot.remove(demoted)
	if err != nil {
		return err
	}
	if err := c.hot.insert(k, page); err != nil {
		return err
	}
	if err := c.cold.insert(demoted, demotedPage); err != nil {
		return err
	}
	c.log.Debug("promote", "key", k, "demoted", demoted)
	c.hooks.Metrics.Promote()
	return nil
}

// Compile-time check: Cache implements cache.Cache.
var _ cache.Cache[int, int] = (*Cache[int, int])(nil)
