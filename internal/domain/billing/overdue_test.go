package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInterestCalculator_MonthsLate(t *testing.T) {
	calc := NewInterestCalculator()
	due := date(2025, 1, 10)

	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"on_due_date", due, 0},
		{"before_due_date", date(2025, 1, 5), 0},
		{"one_day_late_counts_full_month", due.AddDate(0, 0, 1), 1},
		{"twenty_nine_days_late", due.AddDate(0, 0, 29), 1},
		{"thirty_days_late", due.AddDate(0, 0, 30), 1},
		{"thirty_one_days_late", due.AddDate(0, 0, 31), 2},
		{"ninety_one_days_late", due.AddDate(0, 0, 91), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.MonthsLate(due, tt.now))
		})
	}
}

func TestInterestCalculator_Accrued(t *testing.T) {
	calc := NewInterestCalculator()
	due := date(2025, 2, 1)
	base := decimal.NewFromInt(3000)
	rate := decimal.NewFromFloat(1.5)

	// Not yet overdue.
	assert.True(t, calc.Accrued(base, due, rate, due).IsZero())

	// 10 days late: one full month at 1.5% of 3000.
	got := calc.Accrued(base, due, rate, due.AddDate(0, 0, 10))
	assert.True(t, got.Equal(decimal.NewFromInt(45)), "got %s", got)

	// Zero rate accrues nothing.
	assert.True(t, calc.Accrued(base, due, decimal.Zero, due.AddDate(0, 0, 10)).IsZero())
}

func TestInterestCalculator_Idempotence(t *testing.T) {
	calc := NewInterestCalculator()
	due := date(2025, 3, 15)
	base := decimal.NewFromFloat(1234.56)
	rate := decimal.NewFromFloat(2.25)
	now := due.AddDate(0, 0, 45)

	first := calc.Accrued(base, due, rate, now)
	second := calc.Accrued(base, due, rate, now)
	assert.True(t, first.Equal(second))
}

func TestInterestCalculator_NoDoubleCounting(t *testing.T) {
	calc := NewInterestCalculator()
	due := date(2025, 1, 1)
	base := decimal.NewFromInt(1000)
	rate := decimal.NewFromFloat(1.5)

	// Interest at D+40 is two months computed from scratch, not the
	// sum of successive refreshes.
	atForty := calc.Accrued(base, due, rate, due.AddDate(0, 0, 40))
	assert.True(t, atForty.Equal(decimal.NewFromInt(30)), "got %s", atForty)

	atThirty := calc.Accrued(base, due, rate, due.AddDate(0, 0, 30))
	assert.True(t, atThirty.Equal(decimal.NewFromInt(15)), "got %s", atThirty)
	assert.False(t, atForty.Equal(atThirty.Add(atForty)))
}
