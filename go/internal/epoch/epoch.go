// Package epoch provides the Unix-time arithmetic the vote cycle is built
// on: hour boundaries, age differences, and threshold predicates. Every
// function reads time through a clockwork.Clock so tests can drive the whole
// state machine with a fake clock.
package epoch

import (
	"github.com/jonboulle/clockwork"
)

// SecondsPerHour is the length of one vote cycle.
const SecondsPerHour int64 = 3600

// Current returns the current time as whole seconds since the Unix epoch.
func Current(clock clockwork.Clock) int64 {
	return clock.Now().Unix()
}

// NextHour returns the smallest future epoch that is a multiple of 3600.
// When the clock sits exactly on a boundary the following boundary is
// returned, never "now".
func NextHour(clock clockwork.Clock) int64 {
	now := Current(clock)
	if now%SecondsPerHour == 0 {
		return now + SecondsPerHour
	}
	return (now/SecondsPerHour + 1) * SecondsPerHour
}

// PreviousHour returns the boundary that opened the hour before the
// currently-completed one.
func PreviousHour(clock clockwork.Clock) int64 {
	return NextHour(clock) - 2*SecondsPerHour
}

// Difference returns |a-b|. It is commutative.
func Difference(a, b int64) int64 {
	if a >= b {
		return a - b
	}
	return b - a
}

// ExceedsThreshold reports whether two epochs are at least threshold seconds
// apart. Callers pick the direction of the comparison by their choice of
// arguments and threshold.
func ExceedsThreshold(a, b, threshold int64) bool {
	return Difference(a, b) >= threshold
}

// MinuteOfHour returns how many whole minutes have elapsed in the current
// wall-clock hour.
func MinuteOfHour(clock clockwork.Clock) int {
	return int((Current(clock) % SecondsPerHour) / 60)
}

// SecondOfMinute returns how many seconds have elapsed in the current
// wall-clock minute.
func SecondOfMinute(clock clockwork.Clock) int {
	return int(Current(clock) % 60)
}
