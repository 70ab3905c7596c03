// Package timewindow decides whether "now" falls inside the self-service
// edit window of a lesson.
package timewindow

import "time"

// Lessons persist their calendar date and times of day as timezone-naive
// values that actually mean civil time at a fixed offset (UTC+9 for the
// studio). Reconstruct reads the stored year/month/day and hour/minute/second
// as plain numbers and shifts them by the offset to obtain a real instant.
func Reconstruct(date, timeOfDay time.Time, offset time.Duration) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), timeOfDay.Second(), 0,
		time.UTC,
	).Add(-offset)
}

// Gate computes the edit window [start-Lead, end+Trail] for a lesson.
type Gate struct {
	Offset time.Duration // civil offset the naive date/time fields represent
	Lead   time.Duration // window opens this long before the lesson starts
	Trail  time.Duration // window closes this long after the lesson ends
}

// Window returns the open and close instants of the edit window.
func (g Gate) Window(date, start, end time.Time) (time.Time, time.Time) {
	from := Reconstruct(date, start, g.Offset)
	to := Reconstruct(date, end, g.Offset)
	if !to.After(from) {
		// lesson runs past local midnight
		to = to.Add(24 * time.Hour)
	}
	return from.Add(-g.Lead), to.Add(g.Trail)
}

// Open reports whether now falls inside the edit window, bounds inclusive.
func (g Gate) Open(now, date, start, end time.Time) bool {
	from, to := g.Window(date, start, end)
	return !now.Before(from) && !now.After(to)
}
