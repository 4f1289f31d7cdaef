package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// displayLayout renders an instant for human-facing listings.
// Comparison must always use the underlying time.Time, never this string.
const displayLayout = "2006-01-02 15:04 UTC"

// FormatMinuteUTC renders t in UTC with minute precision, e.g.
// "2026-08-26 14:03 UTC".
func FormatMinuteUTC(t time.Time) string {
	return t.UTC().Format(displayLayout)
}

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice.
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

// ExponentialBackoffDelay computes the delay before retry attempt
// backoffCount (1-based), applying exponential growth capped at the
// configured maximum, plus uniform jitter in [0, jitter).
//
// Properties:
//   - Deterministic for a given rng state
//   - Never negative
//   - Never exceeds maxDuration + jitter
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	// initial * (multiplier ^ (count - 1)), capped
	exponent := float64(backoffCount - 1)
	scaled := float64(backoffParam.InitialDuration()) * math.Pow(backoffParam.Multiplier(), exponent)
	delay := time.Duration(scaled)
	if backoffParam.MaxDuration() > 0 && delay > backoffParam.MaxDuration() {
		delay = backoffParam.MaxDuration()
	}
	if delay < 0 {
		delay = backoffParam.MaxDuration()
	}

	if jitter > 0 {
		delay += time.Duration(rng.Int63n(int64(jitter)))
	}

	return delay
}
