// Package prom exports cache.Metrics signals as Prometheus metrics.
package prom

import (
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evicts     *prometheus.CounterVec
	promotions prometheus.Counter
	sizeEnt    prometheus.Gauge
}

// New constructs a Prometheus metrics adapter and registers its collectors.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil); use
//     them to tell engines apart when several share one registry
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:       prometheus.NewCounter(counter("hits_total", "Lookups served from the cache")),
		misses:     prometheus.NewCounter(counter("misses_total", "Lookups that fetched the page")),
		evicts:     prometheus.NewCounterVec(counter("evictions_total", "Evictions by reason (dead, farthest, cold)"), []string{"reason"}),
		promotions: prometheus.NewCounter(counter("promotions_total", "LIRS cold-to-hot promotions")),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts(
			counter("resident_entries", "Number of resident entries"))),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.promotions, a.sizeEnt)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Promote increments the promotion counter.
func (a *Adapter) Promote() { a.promotions.Inc() }

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) {
	a.sizeEnt.Set(float64(entries))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
