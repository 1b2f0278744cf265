// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"time"
)

// Date represents a calendar date in YYYY-MM-DD form.
type Date string

// ParseDate validates and creates a Date from a string.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", fmt.Errorf("date is required")
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("invalid date format. Use YYYY-MM-DD")
	}
	return Date(s), nil
}

// DateOf creates a Date from a time value.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// IsValid checks whether the date is well-formed.
func (d Date) IsValid() bool {
	_, err := time.Parse("2006-01-02", string(d))
	return err == nil
}

// String returns the date string.
func (d Date) String() string {
	return string(d)
}

// MonthKey returns the YYYY-MM prefix of the date.
func (d Date) MonthKey() string {
	if len(d) < 7 {
		return string(d)
	}
	return string(d[:7])
}

// Time returns the date as a UTC midnight time value.
func (d Date) Time() time.Time {
	t, _ := time.Parse("2006-01-02", string(d))
	return t
}

// Year represents a contribution year value object.
type Year int

// minYear はGitHubのコントリビューション履歴が意味を持つ下限です。
const minYear = 2008

// ParseYear validates and creates a Year from a query string.
// An empty string falls back to the current year.
func ParseYear(s string) (Year, error) {
	if s == "" {
		return Year(time.Now().Year()), nil
	}
	var y int
	if _, err := fmt.Sscanf(s, "%d", &y); err != nil {
		return 0, fmt.Errorf("invalid year parameter: must be an integer")
	}
	year := Year(y)
	if !year.IsValid() {
		return 0, fmt.Errorf("year must be between %d and %d", minYear, time.Now().Year())
	}
	return year, nil
}

// IsValid checks whether the year is within the selectable range.
func (y Year) IsValid() bool {
	return int(y) >= minYear && int(y) <= time.Now().Year()
}

// Int returns the year as an integer.
func (y Year) Int() int {
	return int(y)
}

// From returns the first instant of the year (Jan 1 00:00:00 UTC).
func (y Year) From() time.Time {
	return time.Date(int(y), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// To returns the last second of the year (Dec 31 23:59:59 UTC).
func (y Year) To() time.Time {
	return time.Date(int(y), time.December, 31, 23, 59, 59, 0, time.UTC)
}

// YearsSince returns the selectable year list from the given first year
// down to the current year, newest first.
func YearsSince(first int) []int {
	current := time.Now().Year()
	if first > current {
		first = current
	}
	years := make([]int, 0, current-first+1)
	for y := current; y >= first; y-- {
		years = append(years, y)
	}
	return years
}
