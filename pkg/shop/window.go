package shop

import (
	"fmt"
	"time"
)

// Window is a closed UTC date interval: inclusive start-of-day on From to
// end-of-day on To.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window from two dates, truncating both to UTC days.
func NewWindow(from, to time.Time) Window {
	return Window{From: dayStart(from), To: dayStart(to)}
}

// LastDays returns the rolling window covering the last n days up to today.
func LastDays(n int) Window {
	now := time.Now().UTC()
	return NewWindow(now.AddDate(0, 0, -n), now)
}

// ParseWindow parses "2006-01-02" formatted from/to strings.
func ParseWindow(from, to string) (Window, error) {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return Window{}, fmt.Errorf("parse from date %q: %w", from, err)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return Window{}, fmt.Errorf("parse to date %q: %w", to, err)
	}
	return NewWindow(f, t), nil
}

// Start returns the inclusive lower bound (00:00:00 UTC on From).
func (w Window) Start() time.Time {
	return w.From
}

// End returns the inclusive upper bound (23:59:59 UTC on To).
func (w Window) End() time.Time {
	return w.To.Add(24*time.Hour - time.Second)
}

// String returns the window in its cache-key form.
func (w Window) String() string {
	return w.From.Format("2006-01-02") + "_" + w.To.Format("2006-01-02")
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
