package session

import "time"

// Clock abstracts time to keep idle-expiry deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock used in production.
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
