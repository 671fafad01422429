package book

import (
	"fmt"
	"time"
)

type dayKind uint8

const (
	kindOpening dayKind = iota
	kindDate
	kindLatest
)

// DayKey identifies a bucket in an account's day table. Keys are totally
// ordered: Opening sorts before every date and Latest after every date.
//
// The zero value is Opening. DayKey is comparable and usable as a map key.
type DayKey struct {
	kind  dayKind
	year  int
	month time.Month
	day   int
}

var (
	// Opening is the pseudo-day holding opening balance transactions.
	Opening = DayKey{}
	// Latest stands for "no cut-off" when asking for a balance.
	Latest = DayKey{kind: kindLatest}
)

const dayLayout = "2006-01-02"

// Day returns the key for a calendar date. Out of range values are
// normalized the way time.Date does.
func Day(year int, month time.Month, day int) DayKey {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf returns the key for the calendar date of t in t's own location.
func DayOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{kind: kindDate, year: y, month: m, day: d}
}

// ParseDay parses "YYYY-MM-DD". The empty string is the opening day.
func ParseDay(s string) (DayKey, error) {
	if s == "" {
		return Opening, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return DayKey{}, NewParseError(s, "day", err)
	}
	return DayOf(t), nil
}

// MustParseDay is like ParseDay but panics on malformed input.
func MustParseDay(s string) DayKey {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d DayKey) IsOpening() bool { return d.kind == kindOpening }
func (d DayKey) IsLatest() bool  { return d.kind == kindLatest }

// Time returns midnight UTC of the date. Opening and Latest have no date and
// return the zero time.
func (d DayKey) Time() time.Time {
	if d.kind != kindDate {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1.
func (d DayKey) Compare(o DayKey) int {
	if d.kind != o.kind {
		if d.kind < o.kind {
			return -1
		}
		return 1
	}
	if d.kind != kindDate {
		return 0
	}
	switch {
	case d.year != o.year:
		return cmpInt(d.year, o.year)
	case d.month != o.month:
		return cmpInt(int(d.month), int(o.month))
	default:
		return cmpInt(d.day, o.day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d DayKey) Before(o DayKey) bool { return d.Compare(o) < 0 }
func (d DayKey) After(o DayKey) bool  { return d.Compare(o) > 0 }

// String renders the key as it appears in handles: "" for the opening day,
// "YYYY-MM-DD" for dates.
func (d DayKey) String() string {
	switch d.kind {
	case kindOpening:
		return ""
	case kindLatest:
		return "latest"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// MarshalText encodes the key for JSON and YAML.
func (d DayKey) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the output of MarshalText.
func (d *DayKey) UnmarshalText(text []byte) error {
	if string(text) == "latest" {
		*d = Latest
		return nil
	}
	k, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = k
	return nil
}

// Period is an inclusive range of days.
type Period struct {
	From DayKey
	To   DayKey
}

// Contains reports whether d lies within the period.
func (p Period) Contains(d DayKey) bool {
	return !d.Before(p.From) && !d.After(p.To)
}

func (p Period) String() string {
	return p.From.String() + ".." + p.To.String()
}
