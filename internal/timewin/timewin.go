package timewin

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DaysBetween returns the absolute difference between a and b in whole days, rounded up
func DaysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Window is a disaster's active period; a nil End means still ongoing
type Window struct {
	Start time.Time
	End   *time.Time
}

// Contains reports whether t lies in [Start, End], inclusive. An open window ends at now.
func (w Window) Contains(t, now time.Time) bool {
	end := now
	if w.End != nil {
		end = *w.End
	}
	return !t.Before(w.Start) && !t.After(end)
}

// Before reports whether t precedes the window start
func (w Window) Before(t time.Time) bool {
	return t.Before(w.Start)
}
