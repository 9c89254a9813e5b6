package lirs

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/IvanBrykalov/pagecache/cache"
)

func getPage(k int) (float64, error) { return math.Sin(float64(k)), nil }

func newCache(tb testing.TB, capacity int) *Cache[int, float64] {
	tb.Helper()
	c, err := New(Options[int, float64]{Capacity: capacity})
	if err != nil {
		tb.Fatal(err)
	}
	return c
}

func lookup(tb testing.TB, c *Cache[int, float64], k int) bool {
	tb.Helper()
	hit, err := c.LookupOrFetch(k, getPage)
	if err != nil {
		tb.Fatalf("LookupOrFetch(%d): %v", k, err)
	}
	if err := checkInvariants(c); err != nil {
		tb.Fatalf("after LookupOrFetch(%d): %v", k, err)
	}
	return hit
}

// checkInvariants verifies the cross-structure invariants of c.
func checkInvariants[K comparable, V any](c *Cache[K, V]) error {
	if c.hot.len() > c.hot.limit || c.cold.len() > c.cold.limit {
		return fmt.Errorf("partition overflow: hot %d/%d cold %d/%d",
			c.hot.len(), c.hot.limit, c.cold.len(), c.cold.limit)
	}
	if c.Len() > c.capacity {
		return fmt.Errorf("%d residents exceed capacity %d", c.Len(), c.capacity)
	}
	if c.stack.len() > c.stack.limit {
		return fmt.Errorf("stack holds %d > %d", c.stack.len(), c.stack.limit)
	}
	if len(c.stack.idx) != c.stack.len() {
		return fmt.Errorf("stack index %d != stack length %d", len(c.stack.idx), c.stack.len())
	}
	if b, ok := c.stack.bottom(); ok && b.status != LIR {
		return fmt.Errorf("stack bottom %v is %v", b.key, b.status)
	}
	for k := range c.hot.idx {
		if c.cold.contains(k) {
			return fmt.Errorf("%v is both hot and cold", k)
		}
		if st, ok := c.stack.status(k); !ok || st != LIR {
			return fmt.Errorf("hot %v is not LIR in the stack (%v, %v)", k, st, ok)
		}
	}
	for h, e := range c.stack.l.All() {
		if c.stack.idx[e.key] != h {
			return fmt.Errorf("stack index of %v is stale", e.key)
		}
		if e.status == LIR && !c.hot.contains(e.key) {
			return fmt.Errorf("LIR %v in stack is not hot", e.key)
		}
	}
	return nil
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string
		opt  Options[int, int]
	}{
		{"capacity -1", Options[int, int]{Capacity: -1}},
		{"capacity 0", Options[int, int]{Capacity: 0}},
		{"capacity 1", Options[int, int]{Capacity: 1}},
		{"hot fraction negative", Options[int, int]{Capacity: 4, HotFraction: -0.5}},
		{"hot fraction above one", Options[int, int]{Capacity: 4, HotFraction: 1.5}},
		{"hot fraction NaN", Options[int, int]{Capacity: 4, HotFraction: math.NaN()}},
		{"stack multiplier 1", Options[int, int]{Capacity: 4, StackMultiplier: 1}},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(test.opt)
			if c != nil || err == nil {
				t.Fatalf("New must fail for %+v", test.opt)
			}
			if !errors.Is(err, cache.ErrConfig) {
				t.Fatalf("want a configuration error, got %v", err)
			}
		})
	}
	if _, err := New(Options[int, int]{Capacity: 1}); !errors.Is(err, cache.ErrInvalidCapacity) {
		t.Fatalf("capacity 1 must report ErrInvalidCapacity, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		capacity       int
		frac           float64
		wantHot, wantC int
	}{
		{2, 0.9, 1, 1},
		{3, 0.9, 2, 1},
		{10, 0.9, 9, 1},
		{100, 0.9, 90, 10},
		{2, 0.1, 1, 1},
		{4, 1, 3, 1},
		{5, 0.5, 3, 2}, // round half away from zero
	} {
		hot, cold := split(test.capacity, test.frac)
		if hot != test.wantHot || cold != test.wantC {
			t.Errorf("split(%d, %v): want %d/%d, got %d/%d",
				test.capacity, test.frac, test.wantHot, test.wantC, hot, cold)
		}
	}
}

func TestLIRS_BasicHitMiss(t *testing.T) {
	t.Parallel()

	c := newCache(t, 2)
	if lookup(t, c, 1) {
		t.Fatal("first reference must miss")
	}
	if !lookup(t, c, 1) {
		t.Fatal("second reference must hit")
	}
}

// Regression trace: capacity 2 splits into one hot and one cold slot.
func TestLIRS_EvictionPolicy(t *testing.T) {
	t.Parallel()

	c := newCache(t, 2)
	if c.HotCap() != 1 || c.ColdCap() != 1 {
		t.Fatalf("want 1/1 split, got %d/%d", c.HotCap(), c.ColdCap())
	}
	trace := []int{1, 2, 3, 1, 3, 3, 2, 1}
	want := []bool{false, false, false, true, true, true, false, false}
	for i, k := range trace {
		if got := lookup(t, c, k); got != want[i] {
			t.Fatalf("request %d (key %d): want hit=%v, got %v", i, k, want[i], got)
		}
	}
}

func TestLIRS_ColdPromotion(t *testing.T) {
	t.Parallel()

	c := newCache(t, 2)
	for _, k := range []int{1, 2, 3, 1, 3} {
		lookup(t, c, k)
	}
	if st, res, stacked := c.Status(3); st != HIR || !res || !stacked {
		t.Fatalf("3 must be resident HIR in the stack, got %v %v %v", st, res, stacked)
	}
	lookup(t, c, 3) // re-referenced within its stack lifetime
	if st, res, _ := c.Status(3); st != LIR || !res {
		t.Fatalf("3 must be promoted to LIR, got %v resident=%v", st, res)
	}
	if st, res, stacked := c.Status(1); st != HIR || !res || stacked {
		t.Fatalf("1 must be demoted to a cold resident outside the stack, got %v %v %v",
			st, res, stacked)
	}
}

// A miss on a key that is still in the stack is admitted straight to hot.
func TestLIRS_StackedMissIsPromoted(t *testing.T) {
	t.Parallel()

	c := newCache(t, 3) // hot 2, cold 1
	for _, k := range []int{1, 2, 3, 4} {
		lookup(t, c, k)
	}
	// 3 was evicted by 4 but is still tracked in the stack as history.
	if st, res, stacked := c.Status(3); st != HIR || res || !stacked {
		t.Fatalf("3 must be non-resident HIR history, got %v %v %v", st, res, stacked)
	}
	var promotions int
	c.hooks.Metrics = countingMetrics{promote: &promotions}
	if lookup(t, c, 3) {
		t.Fatal("3 must miss")
	}
	if st, res, _ := c.Status(3); st != LIR || !res {
		t.Fatalf("3 must be hot after a stacked miss, got %v resident=%v", st, res)
	}
	if promotions != 1 {
		t.Fatalf("want one promotion, got %d", promotions)
	}
	if c.HotLen() != 2 || c.ColdLen() != 1 {
		t.Fatalf("partition sizes changed: hot %d cold %d", c.HotLen(), c.ColdLen())
	}
}

func TestLIRS_ColdHitWithoutHistoryRefreshesRecency(t *testing.T) {
	t.Parallel()

	c, err := New(Options[int, float64]{Capacity: 4, HotFraction: 0.5}) // 2/2
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{1, 2, 3, 4} {
		lookup(t, c, k)
	}
	lookup(t, c, 1)
	lookup(t, c, 2) // both hot keys above 3 and 4: prunes them out of the stack
	if _, _, stacked := c.Status(3); stacked {
		t.Fatal("3 must have been pruned")
	}
	lookup(t, c, 3) // cold hit without history: becomes cold MRU
	if st, _, _ := c.Status(3); st != HIR {
		t.Fatal("cold hit without history must not promote")
	}
	lookup(t, c, 5) // evicts the cold LRU, which is now 4
	if _, res, _ := c.Status(4); res {
		t.Fatal("4 must be evicted")
	}
	if _, res, _ := c.Status(3); !res {
		t.Fatal("3 must survive")
	}
}

// Repeating the MRU hot key changes nothing but recency.
func TestLIRS_RepeatedHotHitIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newCache(t, 4)
	for _, k := range []int{1, 2, 3, 4, 2} {
		lookup(t, c, k)
	}
	before := slices.Sorted(c.Keys())
	hot, cold, depth := c.HotLen(), c.ColdLen(), c.StackLen()
	for range 3 {
		if !lookup(t, c, 2) {
			t.Fatal("2 must hit")
		}
	}
	if after := slices.Sorted(c.Keys()); !slices.Equal(before, after) {
		t.Fatalf("residency changed: %v -> %v", before, after)
	}
	if c.HotLen() != hot || c.ColdLen() != cold || c.StackLen() != depth {
		t.Fatal("partition or stack sizes changed")
	}
}

func TestLIRS_FetchErrorLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	c := newCache(t, 2)
	lookup(t, c, 1)
	lookup(t, c, 2)
	depth := c.StackLen()

	boom := errors.New("disk on fire")
	hit, err := c.LookupOrFetch(3, func(int) (float64, error) { return 0, boom })
	if hit || !errors.Is(err, boom) {
		t.Fatalf("want the fetch error, got hit=%v err=%v", hit, err)
	}
	if got := slices.Sorted(c.Keys()); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("residents changed: %v", got)
	}
	if c.StackLen() != depth || c.stack.contains(3) {
		t.Fatal("stack changed by a failed fetch")
	}
	if err := checkInvariants(c); err != nil {
		t.Fatal(err)
	}
}

func TestLIRS_PagesRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(Options[int, string]{Capacity: 3})
	if err != nil {
		t.Fatal(err)
	}
	fetched := map[int]string{}
	calls := 0
	fetch := func(k int) (string, error) {
		calls++
		page := fmt.Sprintf("page-%d-%d", k, calls)
		fetched[k] = page
		return page, nil
	}
	rng := rand.New(rand.NewSource(7))
	for range 2000 {
		k := rng.Intn(8)
		before := calls
		hit, err := c.LookupOrFetch(k, fetch)
		if err != nil {
			t.Fatal(err)
		}
		if hit && calls != before {
			t.Fatal("fetch called on a hit")
		}
		if !hit && calls != before+1 {
			t.Fatal("fetch must be called exactly once per miss")
		}
		if page, ok := c.Peek(k); !ok || page != fetched[k] {
			t.Fatalf("page of %d: want %q, got %q (%v)", k, fetched[k], page, ok)
		}
	}
}

// Random workloads must never break the cross-structure invariants.
func TestLIRS_InvariantsUnderRandomLoad(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{2, 3, 5, 16, 64} {
		for _, mult := range []int{2, 3} {
			t.Run(fmt.Sprintf("cap%d_x%d", capacity, mult), func(t *testing.T) {
				t.Parallel()
				c, err := New(Options[int, float64]{Capacity: capacity, StackMultiplier: mult})
				if err != nil {
					t.Fatal(err)
				}
				rng := rand.New(rand.NewSource(int64(capacity * mult)))
				zipf := rand.NewZipf(rng, 1.2, 1, uint64(capacity*6))
				for range 5000 {
					var k int
					if rng.Intn(4) == 0 {
						k = rng.Intn(capacity * 6)
					} else {
						k = int(zipf.Uint64())
					}
					lookup(t, c, k)
				}
			})
		}
	}
}

func TestStack_PushPruneOverflow(t *testing.T) {
	t.Parallel()

	s := newStack[string](3)
	mustPush := func(k string, st Status) {
		t.Helper()
		if err := s.push(k, st); err != nil {
			t.Fatal(err)
		}
	}
	mustPush("a", LIR)
	mustPush("b", HIR)
	mustPush("c", HIR)
	// Full: pushing d drops the bottom-most HIR (b).
	mustPush("d", HIR)
	if s.contains("b") || !s.contains("a") || s.len() != 3 {
		t.Fatal("overflow must drop the bottom-most HIR entry")
	}
	// Re-pushing an existing key moves it instead of duplicating.
	mustPush("a", LIR)
	if s.len() != 3 {
		t.Fatalf("dedup push must keep length 3, got %d", s.len())
	}
	s.prune() // bottom is now c (HIR), then d (HIR)
	if b, _ := s.bottom(); b.key != "a" || s.len() != 1 {
		t.Fatalf("prune must leave only a, got bottom %v len %d", b.key, s.len())
	}
}

func TestStack_OverflowWithoutHIRIsInvariantViolation(t *testing.T) {
	t.Parallel()

	s := newStack[int](2)
	_ = s.push(1, LIR)
	_ = s.push(2, LIR)
	err := s.push(3, HIR)
	if !errors.Is(err, cache.ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	if errors.Is(err, cache.ErrConfig) {
		t.Fatal("invariant violation must not match ErrConfig")
	}
}

func TestStack_SetStatusMissingKey(t *testing.T) {
	t.Parallel()

	s := newStack[int](2)
	if err := s.setStatus(7, HIR); !errors.Is(err, cache.ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
}

func TestPartition_DuplicateAndMissing(t *testing.T) {
	t.Parallel()

	p := newPartition[int, int]("hot", 2)
	if err := p.insert(1, 10); err != nil {
		t.Fatal(err)
	}
	if err := p.insert(1, 11); !errors.Is(err, cache.ErrInvariant) {
		t.Fatalf("duplicate insert: want ErrInvariant, got %v", err)
	}
	if _, err := p.remove(9); !errors.Is(err, cache.ErrInvariant) {
		t.Fatalf("missing remove: want ErrInvariant, got %v", err)
	}
	if err := p.insert(2, 20); err != nil {
		t.Fatal(err)
	}
	if err := p.insert(3, 30); !errors.Is(err, cache.ErrInvariant) {
		t.Fatalf("insert into full partition: want ErrInvariant, got %v", err)
	}
	if k, _ := p.lru(); k != 1 {
		t.Fatalf("lru want 1, got %d", k)
	}
	p.touch(1)
	if k, _ := p.lru(); k != 2 {
		t.Fatalf("lru after touch want 2, got %d", k)
	}
}

type countingMetrics struct {
	cache.NoopMetrics
	promote *int
}

func (m countingMetrics) Promote() { *m.promote++ }
