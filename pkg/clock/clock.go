// Package clock supplies UTC time and the UTC-midnight day boundaries every
// "once per day" rule is computed against.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Used in tests and replays.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }

// StartOfDay truncates t to 00:00:00 UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextMidnight is the next UTC midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// SecondsToReset is the whole seconds left until NextMidnight, at least 0.
func SecondsToReset(t time.Time) int64 {
	s := int64(NextMidnight(t).Sub(t.UTC()) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

// DateKey formats the UTC day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
