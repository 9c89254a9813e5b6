// Package policy selects a replacement engine by name.
package policy

import (
	"strings"

	"github.com/IvanBrykalov/pagecache/belady"
	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/lirs"
)

// Kind names a replacement engine.
type Kind string

const (
	// KindLIRS is the online LIRS engine.
	KindLIRS Kind = "lirs"
	// KindBelady is the offline-optimal Belady/MIN engine; it needs Config.Trace.
	KindBelady Kind = "belady"
)

// Kinds lists every supported engine.
func Kinds() []Kind { return []Kind{KindLIRS, KindBelady} }

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case KindLIRS, KindBelady:
		return k, nil
	}
	return "", cache.ConfigError("unknown cache type %q (use lirs or belady)", name)
}

// Config holds the union of engine parameters. Fields that do not apply to
// the selected engine are ignored.
type Config[K comparable, V any] struct {
	Capacity int

	// Trace is the full future request sequence (Belady only).
	Trace []K

	// HotFraction and StackMultiplier tune LIRS; zero selects the defaults.
	HotFraction     float64
	StackMultiplier int

	cache.Hooks[K, V]
}

// New constructs the engine named by kind.
func New[K comparable, V any](kind Kind, cfg Config[K, V]) (cache.Cache[K, V], error) {
	switch kind {
	case KindLIRS:
		c, err := lirs.New(lirs.Options[K, V]{
			Capacity:        cfg.Capacity,
			HotFraction:     cfg.HotFraction,
			StackMultiplier: cfg.StackMultiplier,
			Hooks:           cfg.Hooks,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case KindBelady:
		c, err := belady.New(belady.Options[K, V]{
			Capacity: cfg.Capacity,
			Trace:    cfg.Trace,
			Hooks:    cfg.Hooks,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, cache.ConfigError("unknown cache type %q", kind)
}
