package cache

// Cache defines the port interface for extraction result caching.
// This interface follows the port-adapter pattern, allowing different
// cache implementations to be swapped without changing the engine logic.
//
// Invariants every implementation must hold:
//   - at most one entry per FetchKey at any time
//   - Put replaces the prior entry atomically; no reader observes a partial entry
//   - Get is a pure lookup and never triggers a fetch
//   - entries are only removed by Clear (or process exit)
type Cache interface {
	// Get retrieves the entry stored for key.
	// Returns the entry and true if found, or a zero Entry and false if not found.
	Get(key FetchKey) (Entry, bool)

	// Put stores entry under key, replacing any previous entry.
	Put(key FetchKey, entry Entry)

	// Clear removes every entry.
	Clear()
}
