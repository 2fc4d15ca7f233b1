package breaker

import "time"

// Clock supplies the current time to the breaker. Injecting a clock makes
// window eviction and break deadlines deterministic in tests.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
