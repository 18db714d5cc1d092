package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCycleCalculator_Cycle(t *testing.T) {
	calc := NewCycleCalculator(DefaultCycleDays)
	anchor := date(2025, 1, 1)

	tests := []struct {
		name          string
		n             int
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "first_cycle_starts_at_anchor",
			n:             1,
			expectedStart: date(2025, 1, 1),
			expectedEnd:   date(2025, 1, 30),
		},
		{
			name:          "second_cycle_crosses_month_boundary",
			n:             2,
			expectedStart: date(2025, 1, 31),
			expectedEnd:   date(2025, 3, 1),
		},
		{
			name:          "cycle_below_one_clamps_to_first",
			n:             0,
			expectedStart: date(2025, 1, 1),
			expectedEnd:   date(2025, 1, 30),
		},
		{
			name:          "thirteenth_cycle",
			n:             13,
			expectedStart: anchor.AddDate(0, 0, 360),
			expectedEnd:   anchor.AddDate(0, 0, 389),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := calc.Cycle(anchor, tt.n)
			assert.Equal(t, tt.expectedStart, cycle.Start)
			assert.Equal(t, tt.expectedEnd, cycle.End)
			assert.Equal(t, DefaultCycleDays, cycle.DayCount)
		})
	}
}

func TestCycleCalculator_Contiguity(t *testing.T) {
	calc := NewCycleCalculator(DefaultCycleDays)
	anchors := []time.Time{
		date(2025, 1, 1),
		date(2024, 2, 29),
		date(2023, 12, 31),
	}

	for _, anchor := range anchors {
		for n := 1; n <= 24; n++ {
			current := calc.Cycle(anchor, n)
			next := calc.Cycle(anchor, n+1)

			require.Equal(t, current.End.AddDate(0, 0, 1), next.Start,
				"cycle %d and %d must be contiguous for anchor %s", n, n+1, anchor)
			require.Equal(t, DefaultCycleDays, current.DayCount)
			require.Equal(t, current.Start.AddDate(0, 0, DefaultCycleDays-1), current.End)
		}
	}
}

func TestCycleCalculator_CycleNumberFor(t *testing.T) {
	calc := NewCycleCalculator(DefaultCycleDays)
	anchor := date(2025, 1, 1)

	// Round trip: both boundaries of cycle n map back to n.
	for n := 1; n <= 36; n++ {
		cycle := calc.Cycle(anchor, n)
		assert.Equal(t, n, calc.CycleNumberFor(anchor, cycle.Start))
		assert.Equal(t, n, calc.CycleNumberFor(anchor, cycle.End))
	}

	// Dates before the anchor clamp to cycle 1.
	assert.Equal(t, 1, calc.CycleNumberFor(anchor, date(2024, 12, 15)))

	// Mid-cycle dates resolve to their enclosing cycle.
	assert.Equal(t, 1, calc.CycleNumberFor(anchor, date(2025, 1, 15)))
	assert.Equal(t, 2, calc.CycleNumberFor(anchor, date(2025, 2, 10)))
}

func TestCycleCalculator_NextCycleAfter(t *testing.T) {
	calc := NewCycleCalculator(DefaultCycleDays)
	anchor := date(2025, 1, 1)

	first := calc.Cycle(anchor, 1)
	next := calc.NextCycleAfter(anchor, first.End)

	assert.Equal(t, 2, next.Number)
	assert.Equal(t, first.End.AddDate(0, 0, 1), next.Start)
}

func TestCycleCalculator_ContainsIgnoresTimeOfDay(t *testing.T) {
	calc := NewCycleCalculator(DefaultCycleDays)
	cycle := calc.Cycle(date(2025, 1, 1), 1)

	assert.True(t, cycle.Contains(time.Date(2025, 1, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, cycle.Contains(date(2025, 1, 31)))
}
