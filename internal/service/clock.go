package service

import "time"

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// SystemClock is UTC wall time at microsecond precision, the resolution both
// stores keep.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
