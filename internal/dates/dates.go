// Package dates computes renewal dates for monthly billing cycles.
package dates

import "time"

// NextRenewal returns the earliest date on or after from's calendar day
// whose day-of-month equals day, clamped to the last valid day of months
// shorter than day: requesting day 31 in February yields Feb 28 (29 in leap
// years). When the clamped occurrence in from's month already passed, the
// following month is used instead, wrapping December into January of the
// next year. The result carries from's location at midnight.
//
// day must be in [1,31]; values outside that range are a caller bug and
// produce meaningless dates.
func NextRenewal(day int, from time.Time) time.Time {
	year, month, _ := from.Date()
	d := clamped(year, month, day, from.Location())
	if d.Before(midnight(from)) {
		if month == time.December {
			month = time.January
			year++
		} else {
			month++
		}
		d = clamped(year, month, day, from.Location())
	}
	return d
}

// DaysUntil returns the number of whole calendar days from 'from' to 'to',
// ignoring time of day. Negative when 'to' is in the past.
func DaysUntil(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clamped(year int, month time.Month, day int, loc *time.Location) time.Time {
	// Day 0 of the next month is the last day of this one.
	if last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
