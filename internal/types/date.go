package types

import "time"

// ToUTCDate truncates a time to UTC midnight. All billing-cycle
// arithmetic operates on dates, not instants, so inputs are normalized
// at the boundary.
func ToUTCDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b after both
// are normalized to UTC midnight. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a = ToUTCDate(a)
	b = ToUTCDate(b)
	return int(b.Sub(a).Hours() / 24)
}
