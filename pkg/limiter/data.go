package limiter

import "time"

// timing-related data used to decide when the next fetch may start
type pacerTiming struct {
	lastFetchAt time.Time
	// hasFetched is false until the first slot is reserved, so the first fetch never waits
	hasFetched bool
	// reservations counts reserved slots; a cancelled waiter only rolls back its own slot
	reservations uint64
}
