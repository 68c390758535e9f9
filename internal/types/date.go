package types

import "time"

// AddMonths returns the date that is months calendar months after t.
//
// Unlike time.Time.AddDate, the day of the month never rolls over into the
// following month: when the target month is shorter than t's day of the
// month, the day is clamped to the last day of the target month. Adding one
// month to January 31 therefore yields February 28 (or 29 in a leap year),
// never March 2.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, t.Location())
}

// daysIn returns the number of days in a month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
