// Package period resolves timestamps into biweekly accounting periods
// ("quinzenas"): days 1-15 and day 16 to the end of each calendar month.
package period

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidLabel = errors.New("invalid period label")

// Half identifies which half of the month a period covers.
type Half int

const (
	H1 Half = 1
	H2 Half = 2
)

// splitDay is the last day that belongs to the first half.
const splitDay = 15

// Label identifies a period as YYYY-MM-H1 or YYYY-MM-H2. Labels sort
// lexicographically in calendar order.
type Label string

// Period is the half-open window [Start, End).
type Period struct {
	Label Label
	Start time.Time
	End   time.Time
}

// Resolve returns the period enclosing t, computed in t's location.
func Resolve(t time.Time) Period {
	half := H1
	if t.Day() > splitDay {
		half = H2
	}

	return build(t.Year(), t.Month(), half, t.Location())
}

// LabelOf is a shorthand for Resolve(t).Label.
func LabelOf(t time.Time) Label {
	return Resolve(t).Label
}

// Parse turns a label back into its period, in the given location.
func Parse(label string, loc *time.Location) (Period, error) {
	var year, month, half int

	if len(label) != len("2006-01-H1") {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	if _, err := fmt.Sscanf(label, "%4d-%2d-H%1d", &year, &month, &half); err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	if month < 1 || month > 12 || (Half(half) != H1 && Half(half) != H2) {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	if loc == nil {
		loc = time.UTC
	}

	p := build(year, time.Month(month), Half(half), loc)
	if string(p.Label) != label {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	return p, nil
}

func build(year int, month time.Month, half Half, loc *time.Location) Period {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	mid := time.Date(year, month, splitDay+1, 0, 0, 0, 0, loc)

	p := Period{Label: Label(fmt.Sprintf("%04d-%02d-H%d", year, int(month), half))}

	switch half {
	case H1:
		p.Start, p.End = monthStart, mid
	default:
		p.Start, p.End = mid, monthStart.AddDate(0, 1, 0)
	}

	return p
}

// Half reports which half of the month p covers.
func (p Period) Half() Half {
	if p.Start.Day() > splitDay {
		return H2
	}

	return H1
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// LastInstant is the inclusive upper bound, for stores that filter with <=.
func (p Period) LastInstant() time.Time {
	return p.End.Add(-time.Nanosecond)
}

func (p Period) Next() Period {
	return Resolve(p.End)
}

func (p Period) Previous() Period {
	return Resolve(p.Start.Add(-time.Nanosecond))
}

// Days returns the first instant of every calendar day in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	return days
}

// DisplayName renders the period the way people read it, e.g. "2026-02 (16-28)".
func (p Period) DisplayName() string {
	last := p.LastInstant()

	return fmt.Sprintf("%04d-%02d (%02d-%02d)", p.Start.Year(), int(p.Start.Month()), p.Start.Day(), last.Day())
}

func (l Label) String() string {
	return string(l)
}

// Before reports whether l is an earlier period than other.
func (l Label) Before(other Label) bool {
	return l < other
}
