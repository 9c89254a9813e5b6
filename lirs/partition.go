package lirs

import (
	"iter"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/list"
)

type resident[K comparable, V any] struct {
	key  K
	page V
}

// partition is a fixed-capacity resident set (hot or cold) ordered by
// recency: front is MRU, back is LRU. idx gives O(1) membership.
type partition[K comparable, V any] struct {
	name  string
	limit int
	l     *list.List[resident[K, V]]
	idx   map[K]list.Handle
}

func newPartition[K comparable, V any](name string, limit int) *partition[K, V] {
	return &partition[K, V]{
		name:  name,
		limit: limit,
		l:     list.New[resident[K, V]](limit),
		idx:   make(map[K]list.Handle, limit),
	}
}

func (p *partition[K, V]) len() int   { return p.l.Len() }
func (p *partition[K, V]) full() bool { return p.l.Len() >= p.limit }

func (p *partition[K, V]) contains(k K) bool {
	_, ok := p.idx[k]
	return ok
}

func (p *partition[K, V]) get(k K) (V, bool) {
	if h, ok := p.idx[k]; ok {
		return p.l.Value(h).page, true
	}
	var zero V
	return zero, false
}

// insert admits k at the MRU end.
func (p *partition[K, V]) insert(k K, page V) error {
	if _, dup := p.idx[k]; dup {
		return cache.InvariantError("lirs: duplicate insert of %v into %s", k, p.name)
	}
	if p.full() {
		return cache.InvariantError("lirs: %s is full (%d) inserting %v", p.name, p.limit, k)
	}
	p.idx[k] = p.l.PushFront(resident[K, V]{key: k, page: page})
	return nil
}

func (p *partition[K, V]) remove(k K) (V, error) {
	h, ok := p.idx[k]
	if !ok {
		var zero V
		return zero, cache.InvariantError("lirs: %v is not in %s", k, p.name)
	}
	r, _ := p.l.Remove(h)
	delete(p.idx, k)
	return r.page, nil
}

// touch moves k to the MRU end.
func (p *partition[K, V]) touch(k K) {
	if h, ok := p.idx[k]; ok {
		p.l.MoveToFront(h)
	}
}

// lru returns the least recently used resident.
func (p *partition[K, V]) lru() (K, bool) {
	if b := p.l.Back(); b != list.Nil {
		return p.l.Value(b).key, true
	}
	var zero K
	return zero, false
}

// keys iterates from MRU to LRU.
func (p *partition[K, V]) keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, r := range p.l.All() {
			if !yield(r.key) {
				return
			}
		}
	}
}
