package scrape

import (
	"time"

	"github.com/rohmanhakim/page-scraper/internal/cache"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/limiter"
	"github.com/rohmanhakim/page-scraper/pkg/timeutil"
)

type Option func(*Engine)

// WithCache shares a cache between engines. Engines never share a pacer
// unless one is injected explicitly.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

func WithPacer(p limiter.Pacer) Option {
	return func(e *Engine) {
		if p != nil {
			e.pacer = p
		}
	}
}

func WithClock(clock timeutil.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithFreshness(policy cache.FreshnessPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.freshness = policy
		}
	}
}

// WithBaseDelay sets the minimum interval between two fetches of the engine.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

func WithSink(sink metadata.MetadataSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.metadataSink = sink
		}
	}
}
