// Package list implements a doubly linked list whose nodes live in an arena
// and are addressed by stable integer handles instead of pointers.
//
// Side indexes (key -> position) store a Handle; a handle stays valid until
// its node is removed, after which the slot is recycled through a free-list.
// All operations are O(1).
package list

import "iter"

// Handle addresses a node of a List. The zero Handle is never a valid node.
type Handle int32

// Nil is the handle returned when there is no node (empty list, list end).
const Nil Handle = 0

type node[T any] struct {
	val        T
	prev, next Handle
	live       bool
}

// List is an arena-backed doubly linked list: front is the most recent end.
// The zero value is an empty list ready to use.
type List[T any] struct {
	nodes      []node[T] // nodes[0] is a reserved sentinel slot
	free       []Handle
	head, tail Handle
	len        int
}

// New returns an empty list with room for capacity nodes.
func New[T any](capacity int) *List[T] {
	l := &List[T]{nodes: make([]node[T], 1, capacity+1)}
	return l
}

func (l *List[T]) lazyInit() {
	if len(l.nodes) == 0 {
		l.nodes = make([]node[T], 1)
	}
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int { return l.len }

// Front returns the first (most recent) node or Nil.
func (l *List[T]) Front() Handle { return l.head }

// Back returns the last (least recent) node or Nil.
func (l *List[T]) Back() Handle { return l.tail }

// Value returns a pointer to the value stored at h, or nil if h is not live.
// The pointer is invalidated by the next PushFront/PushBack.
func (l *List[T]) Value(h Handle) *T {
	if !l.valid(h) {
		return nil
	}
	return &l.nodes[h].val
}

// PushFront inserts v at the front and returns its handle.
func (l *List[T]) PushFront(v T) Handle {
	h := l.alloc(v)
	l.linkFront(h)
	return h
}

// PushBack inserts v at the back and returns its handle.
func (l *List[T]) PushBack(v T) Handle {
	h := l.alloc(v)
	l.linkBack(h)
	return h
}

// Remove unlinks h and returns its value. ok is false if h was not live.
func (l *List[T]) Remove(h Handle) (v T, ok bool) {
	if !l.valid(h) {
		return v, false
	}
	l.unlink(h)
	n := &l.nodes[h]
	v = n.val
	*n = node[T]{}
	l.free = append(l.free, h)
	l.len--
	return v, true
}

// MoveToFront moves h to the front. It reports false if h is not live.
func (l *List[T]) MoveToFront(h Handle) bool {
	if !l.valid(h) {
		return false
	}
	if l.head == h {
		return true
	}
	l.unlink(h)
	l.linkFront(h)
	return true
}

// All iterates from front to back.
// The list must not be modified during iteration.
func (l *List[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for h := l.head; h != Nil; h = l.nodes[h].next {
			if !yield(h, l.nodes[h].val) {
				return
			}
		}
	}
}

// Backward iterates from back to front.
// The list must not be modified during iteration.
func (l *List[T]) Backward() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for h := l.tail; h != Nil; h = l.nodes[h].prev {
			if !yield(h, l.nodes[h].val) {
				return
			}
		}
	}
}

// -------------------- internals --------------------

func (l *List[T]) valid(h Handle) bool {
	return h > Nil && int(h) < len(l.nodes) && l.nodes[h].live
}

func (l *List[T]) alloc(v T) Handle {
	l.lazyInit()
	var h Handle
	if n := len(l.free); n > 0 {
		h = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.nodes = append(l.nodes, node[T]{})
		h = Handle(len(l.nodes) - 1)
	}
	l.nodes[h] = node[T]{val: v, live: true}
	l.len++
	return h
}

func (l *List[T]) linkFront(h Handle) {
	n := &l.nodes[h]
	n.prev = Nil
	n.next = l.head
	if l.head != Nil {
		l.nodes[l.head].prev = h
	}
	l.head = h
	if l.tail == Nil {
		l.tail = h
	}
}

func (l *List[T]) linkBack(h Handle) {
	n := &l.nodes[h]
	n.next = Nil
	n.prev = l.tail
	if l.tail != Nil {
		l.nodes[l.tail].next = h
	}
	l.tail = h
	if l.head == Nil {
		l.head = h
	}
}

func (l *List[T]) unlink(h Handle) {
	n := &l.nodes[h]
	if n.prev != Nil {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != Nil {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = Nil, Nil
}
