package workload

import (
	"math/rand"

	"github.com/IvanBrykalov/pagecache/cache"
)

func checkShape(capacity, unique, n int) error {
	if capacity <= 0 || unique <= 0 || n <= 0 {
		return cache.ConfigError(
			"cache size, unique keys and request count must be positive (got %d, %d, %d)",
			capacity, unique, n)
	}
	return nil
}

// Uniform draws n keys uniformly from [1, unique].
func Uniform(rng *rand.Rand, capacity, unique, n int) (Trace[int], error) {
	if err := checkShape(capacity, unique, n); err != nil {
		return Trace[int]{}, err
	}
	t := Trace[int]{Capacity: capacity, Requests: make([]int, n)}
	for i := range t.Requests {
		t.Requests[i] = 1 + rng.Intn(unique)
	}
	return t, nil
}

// Zipf draws n keys from [1, unique] with a Zipf(s, v) skew: key 1 is the
// most popular. s must be > 1 and v >= 1.
func Zipf(rng *rand.Rand, capacity, unique, n int, s, v float64) (Trace[int], error) {
	if err := checkShape(capacity, unique, n); err != nil {
		return Trace[int]{}, err
	}
	if s <= 1 || v < 1 {
		return Trace[int]{}, cache.ConfigError("zipf needs s > 1 and v >= 1 (got s=%v v=%v)", s, v)
	}
	zipf := rand.NewZipf(rng, s, v, uint64(unique-1))
	t := Trace[int]{Capacity: capacity, Requests: make([]int, n)}
	for i := range t.Requests {
		t.Requests[i] = 1 + int(zipf.Uint64())
	}
	return t, nil
}
