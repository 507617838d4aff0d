package domain

import (
	"fmt"
)

// Date is a calendar date encoded as an 8-digit YYYYMMDD string, the format
// the statement adapters emit. It stays a string on purpose: the external
// model occasionally returns shorter or malformed values, and downstream
// aggregation has an explicit policy for those instead of rejecting the
// whole import.
type Date string

// ParseDate validates that s is exactly 8 digits and returns it as a Date.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return "", fmt.Errorf("date %q: want exactly 8 digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("date %q: non-digit character", s)
		}
	}
	return Date(s), nil
}

// MonthKey returns the competence month as "MM/YYYY". The second return is
// false when the date is too short to carry a month, which callers use to
// drop the transaction from monthly aggregates.
func (d Date) MonthKey() (string, bool) {
	if len(d) < 6 {
		return "", false
	}
	return string(d[4:6]) + "/" + string(d[0:4]), true
}

// Display renders the date as DD/MM/YYYY, or the raw value when it is not a
// full 8-digit date.
func (d Date) Display() string {
	if len(d) != 8 {
		return string(d)
	}
	return string(d[6:8]) + "/" + string(d[4:6]) + "/" + string(d[0:4])
}
