package utils

import (
	"math"
	"time"
)

// MaxDurationSeconds is the largest number of seconds a time.Duration holds.
const MaxDurationSeconds = float64(math.MaxInt64) / float64(time.Second)

// PerMinute averages count over elapsed wall time. Returns 0 when no time has
// elapsed.
func PerMinute(count int64, elapsed time.Duration) float64 {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(count) / minutes
}

// SecondsToDuration converts fractional seconds, clamping negatives and NaN
// to zero and saturating at the largest representable duration.
func SecondsToDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	ns := seconds * float64(time.Second)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
