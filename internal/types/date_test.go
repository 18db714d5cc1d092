package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	ist = time.FixedZone("IST", 5*60*60+30*60)
	pst = time.FixedZone("PST", -8*60*60)
)

func TestToUTCDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight UTC",
			in:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "afternoon truncates",
			in:   time.Date(2025, time.January, 1, 15, 42, 7, 123, time.UTC),
			want: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "eastern zone crosses midnight backwards",
			in:   time.Date(2025, time.January, 1, 3, 0, 0, 0, ist),
			want: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "western zone crosses midnight forwards",
			in:   time.Date(2024, time.December, 31, 20, 0, 0, 0, pst),
			want: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToUTCDate(tt.in))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC),
			b:    time.Date(2025, time.January, 1, 23, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "thirty days",
			a:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			want: 30,
		},
		{
			name: "negative when b before a",
			a:    time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: -9,
		},
		{
			name: "time of day ignored",
			a:    time.Date(2025, time.January, 1, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2025, time.January, 2, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "across leap day",
			a:    time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}
