// Package datekey provides the calendar key formats used throughout the
// reporting engine: day keys ("YYYY-MM-DD") and month keys ("YYYY-MM"),
// derived from the server's local calendar. Keys are zero padded so that
// lexicographic order matches chronological order.
package datekey

import (
	"fmt"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Day returns the day key for t in local time.
func Day(t time.Time) string {
	return t.Local().Format(dayLayout)
}

// Month returns the month key for t in local time.
func Month(t time.Time) string {
	return t.Local().Format(monthLayout)
}

// Today returns the day key for the current local date.
func Today() string {
	return Day(time.Now())
}

// ThisMonth returns the month key for the current local date.
func ThisMonth() string {
	return Month(time.Now())
}

// ValidDay reports whether s is a well-formed day key naming a real date.
func ValidDay(s string) bool {
	_, err := time.Parse(dayLayout, s)
	return err == nil
}

// ValidMonth reports whether s is a well-formed month key.
func ValidMonth(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// MonthOf returns the month key containing the given day key.
func MonthOf(dateKey string) (string, error) {
	if !ValidDay(dateKey) {
		return "", fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}
	return dateKey[:len(monthLayout)], nil
}

// FirstOfMonth returns midnight local time on the first day of the month.
func FirstOfMonth(monthKey string) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, monthKey, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q (use YYYY-MM): %w", monthKey, err)
	}
	return t, nil
}

// MonthRange returns the first and last day keys of the month. The end of
// February and leap years come out of the calendar arithmetic rather than
// a day count table.
func MonthRange(monthKey string) (start, end string, err error) {
	first, err := FirstOfMonth(monthKey)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return Day(first), Day(last), nil
}

// InMonth reports whether dateKey falls within monthKey. Malformed keys
// are never in any month.
func InMonth(dateKey, monthKey string) bool {
	if !ValidDay(dateKey) {
		return false
	}
	start, end, err := MonthRange(monthKey)
	if err != nil {
		return false
	}
	return dateKey >= start && dateKey <= end
}

// MonthLabel renders a month key as a report heading, e.g. "June 2024".
// An unparseable key is returned unchanged.
func MonthLabel(monthKey string) string {
	t, err := FirstOfMonth(monthKey)
	if err != nil {
		return monthKey
	}
	return t.Format("January 2006")
}
