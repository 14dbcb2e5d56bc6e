package types

import "time"

// Clock stamps entry access times. The default implementation uses time.Now().
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock (with its monotonic reading).
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
