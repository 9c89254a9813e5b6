package workload

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/policy"
)

// SlowPage is the demo page producer: the page of key k is sin(k).
func SlowPage(k int) (float64, error) { return math.Sin(float64(k)), nil }

// CountHits replays keys through c and returns the number of hits.
// It stops at the first error, which is returned with the request index.
func CountHits[K comparable, V any](c cache.Cache[K, V], keys []K, fetch cache.Fetcher[K, V]) (int, error) {
	hits := 0
	for i, k := range keys {
		hit, err := c.LookupOrFetch(k, fetch)
		if err != nil {
			return hits, fmt.Errorf("request %d (%v): %w", i, k, err)
		}
		if hit {
			hits++
		}
	}
	return hits, nil
}

// cancelCheckEvery is how many requests run between context checks in Compare.
const cancelCheckEvery = 4096

// Compare replays t through one fresh engine per entry of cfgs, concurrently,
// and returns the hit count of each. Capacity and Trace are taken from t.
// Engines share nothing, so each runs on its own goroutine; the first
// failure cancels the rest.
func Compare(
	ctx context.Context, t Trace[int], cfgs map[policy.Kind]policy.Config[int, float64],
) (map[policy.Kind]int, error) {
	var (
		mu  sync.Mutex
		out = make(map[policy.Kind]int, len(cfgs))
	)
	g, ctx := errgroup.WithContext(ctx)
	for kind, cfg := range cfgs {
		cfg.Capacity = t.Capacity
		cfg.Trace = t.Requests
		g.Go(func() error {
			c, err := policy.New(kind, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			total := 0
			for start := 0; start < len(t.Requests); start += cancelCheckEvery {
				if err := ctx.Err(); err != nil {
					return err
				}
				end := min(start+cancelCheckEvery, len(t.Requests))
				hits, err := CountHits(c, t.Requests[start:end], SlowPage)
				if err != nil {
					return fmt.Errorf("%s: %w", kind, err)
				}
				total += hits
			}
			mu.Lock()
			out[kind] = total
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
