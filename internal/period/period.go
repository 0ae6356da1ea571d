// Package period provides calendar-period arithmetic for billing cycles.
package period

import (
	"errors"
	"time"
)

var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
)

// Period is one calendar billing period.
type Period struct {
	Month int // 1-12
	Year  int
}

// Validate rejects periods outside the representable calendar range.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Current returns the period containing now.
func Current(now time.Time) Period {
	return Period{Month: int(now.Month()), Year: now.Year()}
}

// Next returns the following period, wrapping December into January of the
// next year.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Previous returns the preceding period, wrapping January into December of
// the prior year.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// DueDate builds the bill due date for a period, clamping dueDay into
// [1, last day of month] so a card due on the 31st still resolves in
// February.
func DueDate(year, month, dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	last := lastDayOfMonth(year, month)
	if dueDay > last {
		dueDay = last
	}
	return time.Date(year, time.Month(month), dueDay, 0, 0, 0, 0, time.UTC)
}

// SameCalendarDay reports whether a and b fall on the same year, month and
// day. Time of day is ignored.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
