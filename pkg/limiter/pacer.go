package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/page-scraper/pkg/timeutil"
)

// Pacer
// Enforces a minimum interval between successive fetches issued by one engine instance.
// Responsibilities:
// - Bookkeep the instance's last fetch timestamp
// - Hand out non-overlapping fetch slots to concurrent callers
// - Block (or suspend) the caller until its slot, honoring cancellation
type Pacer interface {
	Wait(ctx context.Context, minInterval time.Duration) error
	LastFetchAt() time.Time
}

type IntervalPacer struct {
	mu     sync.Mutex
	rngMu  sync.Mutex
	clock  timeutil.Clock
	jitter time.Duration
	timing pacerTiming
	rng    *rand.Rand
}

// NewIntervalPacer returns a pacer driven by clock. A nil clock uses the system clock.
func NewIntervalPacer(clock timeutil.Clock) *IntervalPacer {
	if clock == nil {
		clock = timeutil.NewSystemClock()
	}
	return &IntervalPacer{
		clock: clock,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *IntervalPacer) SetJitter(jitter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jitter = jitter
}

func (p *IntervalPacer) SetRandomSeed(randomSeed int64) {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	p.rng = rand.New(rand.NewSource(randomSeed))
}

// Wait reserves the next fetch slot, max(now, lastFetch + minInterval + jitter),
// records it as the last fetch and sleeps until it arrives.
// The first call on a fresh pacer never waits. If ctx is done before the slot,
// the reservation is released (unless a later caller already queued behind it)
// and ctx.Err() is returned.
func (p *IntervalPacer) Wait(ctx context.Context, minInterval time.Duration) error {
	p.mu.Lock()
	now := p.clock.Now()
	slot := now
	if p.timing.hasFetched {
		next := p.timing.lastFetchAt.Add(minInterval)
		if minInterval > 0 {
			next = next.Add(p.computeJitter(p.jitter))
		}
		if next.After(slot) {
			slot = next
		}
	}
	previous := p.timing
	p.timing.lastFetchAt = slot
	p.timing.hasFetched = true
	p.timing.reservations++
	reservation := p.timing.reservations
	p.mu.Unlock()

	wait := slot.Sub(now)
	var err error
	if wait > 0 {
		err = p.clock.Sleep(ctx, wait)
	} else {
		err = ctx.Err()
	}
	if err != nil {
		p.release(reservation, previous)
		return err
	}
	return nil
}

// release undoes the reservation if nobody reserved after it.
func (p *IntervalPacer) release(reservation uint64, previous pacerTiming) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timing.reservations == reservation {
		previous.reservations = reservation
		p.timing = previous
	}
}

func (p *IntervalPacer) LastFetchAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timing.lastFetchAt
}

// Compute jitter for the given max duration
// Returns a pseudo-random duration in [0, max)
func (p *IntervalPacer) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(p.rng.Int63n(int64(max)))
}
