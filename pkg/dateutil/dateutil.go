// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dateutil handles calendar dates.

A calendar date is represented as a [time.Time] at midnight UTC. On the wire
it is an ISO-8601 "YYYY-MM-DD" string; in PostgreSQL it is a DATE column.
*/
package dateutil

import (
	"fmt"
	"time"
)

// Layout is the wire format of a calendar date.
const Layout = time.DateOnly

// Parse reads a "YYYY-MM-DD" string into a UTC calendar date.
func Parse(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateutil: invalid date %q: %w", value, err)
	}
	return parsed, nil
}

// Format renders a calendar date as "YYYY-MM-DD".
func Format(date time.Time) string {
	return date.UTC().Format(Layout)
}

// FormatPtr renders an optional date, returning nil when absent.
func FormatPtr(date *time.Time) *string {
	if date == nil {
		return nil
	}
	formatted := Format(*date)
	return &formatted
}

// Truncate returns the UTC calendar date that t falls on.
func Truncate(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return Truncate(time.Now())
}

// Within reports whether the calendar date of t lies in [start, end] inclusive.
func Within(t, start, end time.Time) bool {
	day := Truncate(t)
	return !day.Before(Truncate(start)) && !day.After(Truncate(end))
}

// EndOfMonth returns the last calendar date of the month containing date.
func EndOfMonth(date time.Time) time.Time {
	day := Truncate(date)
	return time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// EndOfYear returns December 31st of the year containing date.
func EndOfYear(date time.Time) time.Time {
	return time.Date(date.UTC().Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
