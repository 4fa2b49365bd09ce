package domain

import "time"

// Clock supplies the current time to the application layer. Entity factories
// and mutators take an explicit instant instead of reading the wall clock, so
// timestamp behavior is deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time {
	return c.Instant
}
