package belady

import "fmt"

// NextAccess is the position of a key's next request in the trace.
// A key that is never requested again sorts after every finite position.
type NextAccess struct {
	Exists bool
	Index  int
}

// Never is the NextAccess of a key with no future request.
var Never = NextAccess{}

// Compare orders a and b by distance of reuse: -1 if a is requested sooner,
// +1 if later, 0 if equal. Never is greater than any finite position.
func (a NextAccess) Compare(b NextAccess) int {
	switch {
	case a.Exists && b.Exists:
		switch {
		case a.Index < b.Index:
			return -1
		case a.Index > b.Index:
			return 1
		}
		return 0
	case a.Exists:
		return -1
	case b.Exists:
		return 1
	}
	return 0
}

func (a NextAccess) String() string {
	if !a.Exists {
		return "never"
	}
	return fmt.Sprintf("@%d", a.Index)
}

// occurrences is the future-occurrence index: for every key, the trace
// positions at which it is requested, stored nearest-last so that the
// upcoming request is popped in O(1).
type occurrences[K comparable] struct {
	at map[K][]int
}

func newOccurrences[K comparable](trace []K) occurrences[K] {
	o := occurrences[K]{at: make(map[K][]int)}
	for i := len(trace) - 1; i >= 0; i-- {
		k := trace[i]
		o.at[k] = append(o.at[k], i)
	}
	return o
}

// consume drops the occurrence satisfied by the current request of k.
// Requests beyond the trace leave the index untouched.
func (o occurrences[K]) consume(k K) {
	pos := o.at[k]
	switch len(pos) {
	case 0:
	case 1:
		delete(o.at, k)
	default:
		o.at[k] = pos[:len(pos)-1]
	}
}

// next returns the upcoming request of k.
func (o occurrences[K]) next(k K) NextAccess {
	pos := o.at[k]
	if len(pos) == 0 {
		return Never
	}
	return NextAccess{Exists: true, Index: pos[len(pos)-1]}
}

// remaining returns how many requests of k are still ahead. Used by tests.
func (o occurrences[K]) remaining(k K) int { return len(o.at[k]) }
