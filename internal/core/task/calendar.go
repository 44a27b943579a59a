package task

import "time"

// DaysUntil returns the whole calendar-day difference between the deadline's
// date and ref's date, both observed in ref's location. Time of day is ignored.
func DaysUntil(deadline, ref time.Time) int {
	loc := ref.Location()
	d := civilDate(deadline.In(loc))
	r := civilDate(ref)
	return int(d.Sub(r).Hours() / 24)
}

// DayWindow returns the half-open interval [start, end) covering the calendar
// day that is days after ref's date, in ref's location.
func DayWindow(ref time.Time, days int) (time.Time, time.Time) {
	y, m, d := ref.Date()
	start := time.Date(y, m, d+days, 0, 0, 0, 0, ref.Location())
	end := time.Date(y, m, d+days+1, 0, 0, 0, 0, ref.Location())
	return start, end
}

// civilDate maps the wall-clock date of t onto UTC midnight so subtraction is
// not affected by DST shifts.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
