package cache

import "time"

// FreshnessPolicy decides whether a cached entry may still be served.
// It is evaluated by the caller after Get, so the Cache port itself stays
// a plain get/put/clear store.
type FreshnessPolicy interface {
	IsFresh(entry Entry, now time.Time) bool
}

// FreshnessFunc adapts a function to FreshnessPolicy.
type FreshnessFunc func(entry Entry, now time.Time) bool

func (f FreshnessFunc) IsFresh(entry Entry, now time.Time) bool {
	return f(entry, now)
}

// AlwaysFresh never expires entries. This is the default policy.
type AlwaysFresh struct{}

func (AlwaysFresh) IsFresh(Entry, time.Time) bool {
	return true
}

type maxAge struct {
	limit time.Duration
}

// MaxAge treats entries older than limit as stale. A non-positive limit
// means entries never expire.
func MaxAge(limit time.Duration) FreshnessPolicy {
	if limit <= 0 {
		return AlwaysFresh{}
	}
	return maxAge{limit: limit}
}

func (m maxAge) IsFresh(entry Entry, now time.Time) bool {
	return now.Sub(entry.CreatedAt()) <= m.limit
}
