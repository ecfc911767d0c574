package dedupe

import (
	"github.com/rs/zerolog"
)

type options struct {
	richer bool
}

// Option configures a deduplication pass
type Option func(*options)

// WithRicher lets a later target replace the representative of its key when
// it carries strictly more query information. The replacement takes the
// first-seen slot. Ignored under StrategyOrigin.
func WithRicher() Option {
	return func(o *options) {
		o.richer = true
	}
}

// Dedupe keeps one representative per key, in first-seen order.
// Targets whose key cannot be derived are keyed by their raw text and are
// never dropped.
func Dedupe(targets []string, strategy Strategy, opts ...Option) []string {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	richer := o.richer && strategy != StrategyOrigin

	slot := make(map[Key]int, len(targets))
	out := make([]string, 0, len(targets))
	var rank []richness
	if richer {
		rank = make([]richness, 0, len(targets))
	}

	for _, target := range targets {
		key, err := KeyFor(target, strategy)
		if err != nil {
			key = rawKey(target)
		}

		idx, seen := slot[key]
		if !seen {
			slot[key] = len(out)
			out = append(out, target)
			if richer {
				rank = append(rank, richnessOf(target))
			}
			continue
		}

		if richer {
			if r := richnessOf(target); r.greaterThan(rank[idx]) {
				out[idx] = target
				rank[idx] = r
			}
		}
	}

	return out
}

// Stats reports the effect of the last Dedupe call
type Stats struct {
	Raw    int
	Unique int
}

// Collapsed returns how many targets were dropped
func (s Stats) Collapsed() int {
	return s.Raw - s.Unique
}

// Deduplicator applies one strategy and logs the reduction
type Deduplicator struct {
	strategy Strategy
	opts     []Option
	logger   zerolog.Logger
	stats    Stats
}

// NewDeduplicator creates a deduplicator bound to strategy
func NewDeduplicator(strategy Strategy, logger zerolog.Logger, opts ...Option) *Deduplicator {
	return &Deduplicator{
		strategy: strategy,
		opts:     opts,
		logger:   logger.With().Str("component", "Deduplicator").Str("strategy", strategy.String()).Logger(),
	}
}

// Dedupe collapses targets and records the raw and unique counts
func (d *Deduplicator) Dedupe(targets []string) []string {
	out := Dedupe(targets, d.strategy, d.opts...)
	d.stats = Stats{Raw: len(targets), Unique: len(out)}

	d.logger.Info().
		Int("raw", d.stats.Raw).
		Int("unique", d.stats.Unique).
		Msgf("%d raw targets -> %d after dedup", d.stats.Raw, d.stats.Unique)

	return out
}

// Stats returns the counts of the last call
func (d *Deduplicator) Stats() Stats {
	return d.stats
}

// Strategy returns the bound strategy
func (d *Deduplicator) Strategy() Strategy {
	return d.strategy
}
