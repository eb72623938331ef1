// Package dates provides a civil (wall-calendar) date type used across the
// tracker. All cycle arithmetic is day-granular; a Date has no time zone or
// clock component and two Dates compare by calendar day only
package dates

import (
	"sort"
	"time"

	perr "cycletrack/internal/platform/errors"
)

// ISO is the wire format for dates
const ISO = "2006-01-02"

// Date is a calendar day. The zero value is "no date"
type Date struct {
	t time.Time // always midnight UTC
}

// New builds a Date from year, month, day
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day (in t's location)
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current calendar day in UTC
func Today() Date { return FromTime(time.Now().UTC()) }

// Parse parses an ISO yyyy-mm-dd string
func Parse(s string) (Date, error) {
	t, err := time.Parse(ISO, s)
	if err != nil {
		return Date{}, perr.Wrapf(err, perr.ErrorCodeInvalidDate, "invalid date %q", s)
	}
	return FromTime(t), nil
}

// MustParse parses an ISO date or panics; for tests and literals
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero date
func (d Date) IsZero() bool { return d.t.IsZero() }

// String formats the date as ISO yyyy-mm-dd
func (d Date) String() string { return d.t.Format(ISO) }

// Time returns the underlying midnight-UTC time
func (d Date) Time() time.Time { return d.t }

// AddDays returns the date n days after d (n may be negative)
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysSince returns the whole days from other to d (positive when d is later)
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t) / (24 * time.Hour))
}

// Before reports whether d is strictly before other
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same calendar day
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Compare returns -1, 0, or 1 ordering d against other
func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

// MarshalJSON encodes as an ISO string, or null for the zero date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts an ISO string or null
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return perr.InvalidDatef("date must be a JSON string, got %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Ptr returns a pointer to a copy of d, or nil if d is zero
func (d Date) Ptr() *Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

// Sort orders ds ascending in place
func Sort(ds []Date) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
}

// Min returns the earlier of a and b
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}
