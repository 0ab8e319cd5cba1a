package shared

import "time"

// DateRange is an inclusive window. A zero bound leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Between builds an inclusive window.
func Between(from, to time.Time) DateRange {
	return DateRange{From: from, To: to}
}

// UpTo builds a window open on the left.
func UpTo(to time.Time) DateRange {
	return DateRange{To: to}
}

// Contains reports whether t falls inside the window, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Validate rejects windows whose end precedes their start.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return Invalid("range", "end date precedes start date")
	}
	return nil
}
