// Package billing holds the pure calculators of the monthly rental
// billing engine: fixed-length billing cycles, flat-amount proration
// across weighted line items, and overdue interest accrual. Nothing in
// this package touches persistence; everything is deterministic given
// its inputs.
package billing

import (
	"time"

	"github.com/rentledger/rentledger/internal/types"
)

// DefaultCycleDays is the fixed length of a monthly rental billing
// cycle. Cycles are calendar-agnostic: every cycle spans exactly 30
// days regardless of month boundaries.
const DefaultCycleDays = 30

// BillingCycle is a derived value, never stored standalone. For any
// cycle, End = Start + DayCount - 1 days, and consecutive cycles of the
// same agreement are contiguous and non-overlapping.
type BillingCycle struct {
	Number   int       `json:"number"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DayCount int       `json:"day_count"`
}

// Contains reports whether the date falls within [Start, End].
func (c BillingCycle) Contains(t time.Time) bool {
	t = types.ToUTCDate(t)
	return !t.Before(c.Start) && !t.After(c.End)
}

// CycleCalculator derives billing cycles from an agreement's anchor
// date. The anchor is the start of cycle 1; the caller guarantees it is
// present.
type CycleCalculator struct {
	cycleDays int
}

// NewCycleCalculator creates a calculator with the given cycle length.
// Non-positive lengths fall back to the 30-day default.
func NewCycleCalculator(cycleDays int) *CycleCalculator {
	if cycleDays <= 0 {
		cycleDays = DefaultCycleDays
	}
	return &CycleCalculator{cycleDays: cycleDays}
}

// Cycle returns the n-th billing cycle counted from the anchor date.
// Cycle numbers below 1 are treated as 1.
func (c *CycleCalculator) Cycle(anchor time.Time, n int) BillingCycle {
	if n < 1 {
		n = 1
	}
	start := types.ToUTCDate(anchor).AddDate(0, 0, c.cycleDays*(n-1))
	return BillingCycle{
		Number:   n,
		Start:    start,
		End:      start.AddDate(0, 0, c.cycleDays-1),
		DayCount: c.cycleDays,
	}
}

// CycleNumberFor returns the smallest n >= 1 whose cycle contains the
// target date. Dates before the anchor clamp to cycle 1.
func (c *CycleCalculator) CycleNumberFor(anchor, target time.Time) int {
	days := types.DaysBetween(anchor, target)
	if days < 0 {
		return 1
	}
	return days/c.cycleDays + 1
}

// NextCycleAfter returns the cycle that starts the day after the given
// cycle end. Used to resume billing after the latest invoiced cycle.
func (c *CycleCalculator) NextCycleAfter(anchor, lastEnd time.Time) BillingCycle {
	next := types.ToUTCDate(lastEnd).AddDate(0, 0, 1)
	return c.Cycle(anchor, c.CycleNumberFor(anchor, next))
}
