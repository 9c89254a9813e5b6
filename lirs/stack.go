package lirs

import (
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/internal/list"
)

// Status is the LIRS classification of a key.
type Status uint8

const (
	// LIR (Low Inter-reference Recency): hot, protected from eviction.
	LIR Status = iota
	// HIR (High Inter-reference Recency): cold, resident or history only.
	HIR
)

func (s Status) String() string {
	if s == LIR {
		return "LIR"
	}
	return "HIR"
}

type stackEntry[K comparable] struct {
	key    K
	status Status
}

// stack is the LIRS recency stack S: a bounded history of recently
// referenced keys, most recent at the front, bottom at the back.
// It never holds two entries for the same key.
//
// Invariant (restored by prune after every push): the bottom entry is LIR.
type stack[K comparable] struct {
	limit int
	l     *list.List[stackEntry[K]]
	idx   map[K]list.Handle
}

func newStack[K comparable](limit int) *stack[K] {
	return &stack[K]{
		limit: limit,
		l:     list.New[stackEntry[K]](limit),
		idx:   make(map[K]list.Handle, limit),
	}
}

func (s *stack[K]) len() int { return s.l.Len() }

func (s *stack[K]) contains(k K) bool {
	_, ok := s.idx[k]
	return ok
}

func (s *stack[K]) status(k K) (Status, bool) {
	h, ok := s.idx[k]
	if !ok {
		return HIR, false
	}
	return s.l.Value(h).status, true
}

// push places k on top with the given status, dropping its previous entry.
// When the stack is full the bottom-most HIR entry is discarded to make room.
func (s *stack[K]) push(k K, st Status) error {
	if h, ok := s.idx[k]; ok {
		s.l.Remove(h)
		delete(s.idx, k)
	} else if s.l.Len() >= s.limit {
		if err := s.dropBottomHIR(); err != nil {
			return err
		}
	}
	s.idx[k] = s.l.PushFront(stackEntry[K]{key: k, status: st})
	return nil
}

// dropBottomHIR forgets the oldest HIR history entry.
// A stack full of LIR entries means its bound is smaller than the hot set.
func (s *stack[K]) dropBottomHIR() error {
	victim := list.Nil
	for h, e := range s.l.Backward() {
		if e.status == HIR {
			victim = h
			break
		}
	}
	if victim == list.Nil {
		return cache.InvariantError("lirs: stack of %d holds no HIR entry to drop", s.l.Len())
	}
	e, _ := s.l.Remove(victim)
	delete(s.idx, e.key)
	return nil
}

func (s *stack[K]) setStatus(k K, st Status) error {
	h, ok := s.idx[k]
	if !ok {
		return cache.InvariantError("lirs: %v is not in the stack", k)
	}
	s.l.Value(h).status = st
	return nil
}

func (s *stack[K]) bottom() (stackEntry[K], bool) {
	if b := s.l.Back(); b != list.Nil {
		return *s.l.Value(b), true
	}
	return stackEntry[K]{}, false
}

// prune strips HIR entries from the bottom until an LIR entry is there.
func (s *stack[K]) prune() {
	for b := s.l.Back(); b != list.Nil; b = s.l.Back() {
		e := s.l.Value(b)
		if e.status == LIR {
			return
		}
		delete(s.idx, e.key)
		s.l.Remove(b)
	}
}
