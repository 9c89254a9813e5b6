package belady

import (
	"github.com/google/btree"

	"github.com/IvanBrykalov/pagecache/internal/list"
)

// btreeDegree keeps nodes around a few cache lines wide.
const btreeDegree = 16

// slot is a priority-structure item: a resident entry keyed by the trace
// position of its next request. Positions are unique across live entries
// (every trace position belongs to exactly one key), so ordering by at
// alone is total.
type slot struct {
	at int
	h  list.Handle
}

func slotLess(a, b slot) bool { return a.at < b.at }

// priority orders live residents by next request; Max is the farthest reuse.
// Residents that are never requested again are kept out of it (see Cache.dead).
type priority struct {
	t *btree.BTreeG[slot]
}

func newPriority() priority {
	return priority{t: btree.NewG(btreeDegree, slotLess)}
}

// insert adds s; it reports false if a slot with the same position exists.
func (p priority) insert(s slot) bool {
	_, replaced := p.t.ReplaceOrInsert(s)
	return !replaced
}

// remove deletes the slot at position at and reports whether it was present.
func (p priority) remove(at int) bool {
	_, ok := p.t.Delete(slot{at: at})
	return ok
}

// farthest returns the slot whose next request is the farthest away.
func (p priority) farthest() (slot, bool) { return p.t.Max() }

// len is the number of live residents. Used by tests.
func (p priority) len() int { return p.t.Len() }
