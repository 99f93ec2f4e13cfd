package testutil

import "time"

// FixedClock always returns the same instant. Use for deterministic dates.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
