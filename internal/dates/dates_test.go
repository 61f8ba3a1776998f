package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRenewal(t *testing.T) {
	tests := []struct {
		name string
		day  int
		from time.Time
		want time.Time
	}{
		{name: "leap year clamp", day: 31, from: date(2024, time.February, 15), want: date(2024, time.February, 29)},
		{name: "non-leap clamp", day: 31, from: date(2023, time.February, 15), want: date(2023, time.February, 28)},
		{name: "rollover to next month", day: 15, from: date(2024, time.January, 20), want: date(2024, time.February, 15)},
		{name: "same day counts as due", day: 20, from: date(2024, time.January, 20), want: date(2024, time.January, 20)},
		{name: "december wraps into january", day: 5, from: date(2024, time.December, 10), want: date(2025, time.January, 5)},
		{name: "clamp after rollover", day: 31, from: date(2024, time.January, 31), want: date(2024, time.January, 31)},
		{name: "rollover lands on shorter month", day: 30, from: date(2024, time.January, 31), want: date(2024, time.February, 29)},
		{name: "first of month", day: 1, from: date(2024, time.March, 2), want: date(2024, time.April, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NextRenewal(tc.day, tc.from))
		})
	}
}

func TestNextRenewal_AllDaysNeverBeforeReference(t *testing.T) {
	from := date(2024, time.February, 10)
	for day := 1; day <= 31; day++ {
		got := NextRenewal(day, from)
		if got.Before(from) {
			t.Fatalf("day %d: got %v before reference %v", day, got, from)
		}
		// The result is either the requested day or the last day of its month.
		last := time.Date(got.Year(), got.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if got.Day() != day && got.Day() != last {
			t.Fatalf("day %d: got day %d, month has %d days", day, got.Day(), last)
		}
	}
}

func TestNextRenewal_IgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2024, time.March, 15, 23, 45, 0, 0, time.UTC)
	require.Equal(t, date(2024, time.March, 15), NextRenewal(15, from))
}

func TestDaysUntil(t *testing.T) {
	require.Equal(t, 3, DaysUntil(date(2024, time.March, 28), date(2024, time.March, 31)))
	require.Equal(t, 0, DaysUntil(date(2024, time.March, 28), date(2024, time.March, 28)))
	require.Equal(t, -1, DaysUntil(date(2024, time.March, 28), date(2024, time.March, 27)))
	// Time of day must not affect the whole-day count.
	late := time.Date(2024, time.March, 28, 23, 0, 0, 0, time.UTC)
	early := time.Date(2024, time.March, 29, 1, 0, 0, 0, time.UTC)
	require.Equal(t, 1, DaysUntil(late, early))
}
