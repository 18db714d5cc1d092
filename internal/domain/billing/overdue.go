package billing

import (
	"time"

	"github.com/rentledger/rentledger/internal/types"
	"github.com/shopspring/decimal"
)

// InterestCalculator accrues overdue interest on unpaid invoices.
// Partial months round up: one day past the due date already counts as
// a full month of interest.
type InterestCalculator struct {
	cycleDays int
}

func NewInterestCalculator() *InterestCalculator {
	return &InterestCalculator{cycleDays: DefaultCycleDays}
}

// MonthsLate returns the number of elapsed 30-day months between the
// due date and now, rounded up. Zero when now is on or before the due
// date.
func (c *InterestCalculator) MonthsLate(dueDate, now time.Time) int {
	daysLate := types.DaysBetween(dueDate, now)
	if daysLate <= 0 {
		return 0
	}
	return (daysLate + c.cycleDays - 1) / c.cycleDays
}

// Accrued computes the interest owed as of now. The calculation always
// starts from the original base amount, never from a previously stored
// total: callers persist the returned value as-is, so repeated
// recomputation can never double-count.
func (c *InterestCalculator) Accrued(baseAmount decimal.Decimal, dueDate time.Time, monthlyRatePct decimal.Decimal, now time.Time) decimal.Decimal {
	monthsLate := c.MonthsLate(dueDate, now)
	if monthsLate == 0 || baseAmount.LessThanOrEqual(decimal.Zero) || monthlyRatePct.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	rate := monthlyRatePct.Div(decimal.NewFromInt(100))
	return baseAmount.Mul(rate).Mul(decimal.NewFromInt(int64(monthsLate))).Round(2)
}
