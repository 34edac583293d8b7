package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for occurrence keys and
// journal entries.
const DateLayout = "2006-01-02"

// Date is a civil calendar date with no time-of-day or zone component.
// The zero value is not a valid date; use ParseDate, NewDate or DateOf.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the date for year/month/day. Unlike time.Date it does not
// normalize: 2024-02-30 is rejected rather than rolled into March.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("year %d out of range", year)}
	}
	if month < time.January || month > time.December {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("month %d out of range", int(month))}
	}
	if day < 1 || day > DaysIn(year, month) {
		return Date{}, &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("day %d out of range for %d-%02d", day, year, int(month)),
		}
	}
	return Date{year: year, month: month, day: day}, nil
}

// MustDate is NewDate for literals known to be valid. It panics otherwise.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	if t.Format(DateLayout) != s {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a canonical date", s)}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// PrevDay returns the calendar day before d, crossing month and year
// boundaries.
func (d Date) PrevDay() Date { return d.AddDays(-1) }

// NextDay returns the calendar day after d.
func (d Date) NextDay() Date { return d.AddDays(1) }

func (d Date) Year() int             { return d.year }
func (d Date) Month() time.Month     { return d.month }
func (d Date) Day() int              { return d.day }
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }

// InMonth reports whether d falls within year/month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.year == year && d.month == month
}

func (d Date) Before(other Date) bool { return d.compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d == other }

func (d Date) compare(other Date) int {
	switch {
	case d.year != other.year:
		return d.year - other.year
	case d.month != other.month:
		return int(d.month) - int(other.month)
	default:
		return d.day - other.day
	}
}

// Format formats the date using a time layout.
func (d Date) Format(layout string) string {
	return d.time().Format(layout)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
