package finance

import "time"

// CalendarDate returns the calendar date of t, read in t's own location, as
// midnight UTC. The zero time stays zero.
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the calendar month t falls in. It reports false for the
// zero time.
func MonthOf(t time.Time) (YearMonth, bool) {
	if t.IsZero() {
		return YearMonth{}, false
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, true
}

// Contains reports whether t falls in ym.
func (ym YearMonth) Contains(t time.Time) bool {
	m, ok := MonthOf(t)
	return ok && m == ym
}

// First returns the first day of ym as midnight UTC.
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of ym as midnight UTC.
func (ym YearMonth) Last() time.Time {
	return ym.First().AddDate(0, 1, -1)
}

// Window is a closed interval of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether both bounds are set and Start is not after End.
func (w Window) Valid() bool {
	if w.Start.IsZero() || w.End.IsZero() {
		return false
	}
	return !CalendarDate(w.Start).After(CalendarDate(w.End))
}

// Contains reports whether the calendar date of t lies in [Start, End].
// An invalid window contains nothing.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() || !w.Valid() {
		return false
	}
	d := CalendarDate(t)
	return !d.Before(CalendarDate(w.Start)) && !d.After(CalendarDate(w.End))
}

// within treats zero bounds as open. Used for ad hoc filters where the caller
// may leave either end unset.
func (w Window) within(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := CalendarDate(t)
	if !w.Start.IsZero() && d.Before(CalendarDate(w.Start)) {
		return false
	}
	if !w.End.IsZero() && d.After(CalendarDate(w.End)) {
		return false
	}
	return true
}
