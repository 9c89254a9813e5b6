// Package belady implements the offline-optimal (Belady/MIN) page cache.
//
// The cache is built from the full request trace up front. On a miss at
// capacity it evicts the resident page that is never requested again, or,
// if every resident page has a future request, the one requested farthest
// in the future. No replacement policy produces more hits on the same trace.
//
// Bookkeeping:
//
//   - occurrences: per-key future trace positions (nearest last).
//   - priority:    B-tree of live residents keyed by next request position.
//   - dead:        FIFO of residents with no future request; these are
//     evicted first, oldest-dead first.
//
// Every resident is in exactly one of priority or dead.
package belady

import (
	"iter"
	"log/slog"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/list"
)

// MinimumCapacity defines the lowest capacity accepted by New.
const MinimumCapacity = 1

// Options configures a Belady cache.
type Options[K comparable, V any] struct {
	// Capacity is the resident entry limit; must be >= MinimumCapacity.
	Capacity int

	// Trace is the complete request sequence the cache will be driven with.
	// Requests that deviate from it are served, but their keys are treated
	// as never requested again.
	Trace []K

	cache.Hooks[K, V]
}

type entry[K comparable, V any] struct {
	key  K
	page V
	next NextAccess
	dead list.Handle // position in Cache.dead; list.Nil while live
}

// Cache is a Belady/MIN page cache. It is not safe for concurrent use;
// wrap it with cache.Synchronized if needed.
type Cache[K comparable, V any] struct {
	capacity int
	pos      int // requests served so far

	future   occurrences[K]
	entries  *list.List[entry[K, V]] // arena; insertion order
	resident map[K]list.Handle
	live     priority
	dead     *list.List[list.Handle] // front = oldest dead

	hooks cache.Hooks[K, V]
	log   *slog.Logger
}

// New builds a Belady cache over the given trace.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	if opt.Capacity < MinimumCapacity {
		return nil, cache.CapacityError(MinimumCapacity, opt.Capacity)
	}
	hooks := opt.Hooks.Defaults()
	return &Cache[K, V]{
		capacity: opt.Capacity,
		future:   newOccurrences(opt.Trace),
		entries:  list.New[entry[K, V]](opt.Capacity),
		resident: make(map[K]list.Handle, opt.Capacity),
		live:     newPriority(),
		dead:     list.New[list.Handle](opt.Capacity),
		hooks:    hooks,
		log:      hooks.Logger.With("cache", "belady"),
	}, nil
}

// LookupOrFetch serves the next request of the trace.
// On a hit the entry is re-keyed to its following request. On a miss the
// victim (if any) is chosen first, fetch is called, and only then is the
// cache mutated, so a failed fetch leaves it untouched.
func (c *Cache[K, V]) LookupOrFetch(k K, fetch cache.Fetcher[K, V]) (bool, error) {
	if h, ok := c.resident[k]; ok {
		c.hooks.Metrics.Hit()
		if err := c.touch(h); err != nil {
			return true, err
		}
		c.pos++
		return true, nil
	}
	c.hooks.Metrics.Miss()

	victim, reason := list.Nil, cache.EvictDead
	if c.entries.Len() >= c.capacity {
		var err error
		if victim, reason, err = c.victim(); err != nil {
			return false, err
		}
	}

	page, err := fetch(k)
	if err != nil {
		return false, err
	}

	if victim != list.Nil {
		if err := c.evict(victim, reason); err != nil {
			return false, err
		}
	}
	if err := c.admit(k, page); err != nil {
		return false, err
	}
	c.pos++
	c.hooks.Metrics.Size(c.entries.Len())
	return false, nil
}

// Peek returns the resident page for k without consuming a request.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	if h, ok := c.resident[k]; ok {
		return c.entries.Value(h).page, true
	}
	var zero V
	return zero, false
}

// Next returns the next request of a resident key.
func (c *Cache[K, V]) Next(k K) (NextAccess, bool) {
	if h, ok := c.resident[k]; ok {
		return c.entries.Value(h).next, true
	}
	return Never, false
}

// Len returns the number of resident pages.
func (c *Cache[K, V]) Len() int { return c.entries.Len() }

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Position returns the number of requests served so far.
func (c *Cache[K, V]) Position() int { return c.pos }

// Keys iterates resident keys in admission order.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range c.entries.All() {
			if !yield(e.key) {
				return
			}
		}
	}
}

// -------------------- internals --------------------

// touch consumes the request just served for the entry at h and moves it
// to the priority slot of its following request (or to the dead set).
func (c *Cache[K, V]) touch(h list.Handle) error {
	e := c.entries.Value(h)
	if e.next.Exists {
		if !c.live.remove(e.next.Index) {
			return cache.InvariantError("belady: %v missing from priority at %v", e.key, e.next)
		}
	} else if e.dead != list.Nil {
		// Requested again despite having no future occurrence: the caller
		// deviated from the trace. The entry simply stays dead.
		return nil
	}
	c.future.consume(e.key)
	e.next = c.future.next(e.key)
	return c.place(h, e)
}

// place files a resident entry into priority or dead according to e.next.
func (c *Cache[K, V]) place(h list.Handle, e *entry[K, V]) error {
	if e.next.Exists {
		if !c.live.insert(slot{at: e.next.Index, h: h}) {
			return cache.InvariantError("belady: duplicate priority %v for %v", e.next, e.key)
		}
		return nil
	}
	e.dead = c.dead.PushBack(h)
	return nil
}

// victim selects the page to evict without mutating anything.
func (c *Cache[K, V]) victim() (list.Handle, cache.EvictReason, error) {
	if front := c.dead.Front(); front != list.Nil {
		return *c.dead.Value(front), cache.EvictDead, nil
	}
	s, ok := c.live.farthest()
	if !ok {
		return list.Nil, 0, cache.InvariantError(
			"belady: %d residents but no eviction candidate", c.entries.Len())
	}
	return s.h, cache.EvictFarthest, nil
}

func (c *Cache[K, V]) evict(h list.Handle, reason cache.EvictReason) error {
	e, ok := c.entries.Remove(h)
	if !ok {
		return cache.InvariantError("belady: victim handle %d is not resident", h)
	}
	if e.dead != list.Nil {
		c.dead.Remove(e.dead)
	} else if !c.live.remove(e.next.Index) {
		return cache.InvariantError("belady: victim %v missing from priority", e.key)
	}
	delete(c.resident, e.key)
	c.log.Debug("evict", "key", e.key, "reason", reason, "next", e.next, "pos", c.pos)
	c.hooks.Evicted(e.key, e.page, reason)
	return nil
}

func (c *Cache[K, V]) admit(k K, page V) error {
	if _, dup := c.resident[k]; dup {
		return cache.InvariantError("belady: duplicate insert of %v", k)
	}
	c.future.consume(k)
	h := c.entries.PushBack(entry[K, V]{key: k, page: page, next: c.future.next(k)})
	c.resident[k] = h
	return c.place(h, c.entries.Value(h))
}

// Compile-time check: Cache implements cache.Cache.
var _ cache.Cache[int, int] = (*Cache[int, int])(nil)
