// Package clock supplies the current time behind an interface so that
// cycle and overdue logic stays deterministic in tests.
package clock

import "time"

// Clock is the source of "now" for all billing decisions.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewRealClock returns a Clock backed by the system clock, in UTC.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
