package clock

import "time"

// Clock supplies the current time for all outdated/expiry comparisons so the
// engine is deterministic under test. All times are UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall-clock implementation.
func System() Clock { return systemClock{} }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock { return fixedClock(t.UTC()) }

type fixedClock time.Time

func (f fixedClock) Now() time.Time { return time.Time(f) }
