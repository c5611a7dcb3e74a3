package timeutil

import "time"

// MaxDuration returns the largest of the given durations, or 0 when empty.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	max := durations[0]
	for _, d := range durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// SecondsToDuration converts a fractional number of seconds into a Duration.
// Negative input is clamped to zero.
func SecondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
