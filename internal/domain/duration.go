package domain

import (
	"fmt"
	"time"
)

const (
	wallClockLayout = "15:04:05"
	dayLayout       = "2006-01-02"
)

// FormatWallClock renders a timestamp as a 24-hour wall-clock string.
func FormatWallClock(t time.Time) string {
	return t.Format(wallClockLayout)
}

// FormatDay renders the calendar day of a timestamp.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// DayOf truncates a timestamp to midnight of its calendar day, keeping the
// location so day boundaries follow the session's wall clock.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfNextDay returns midnight of the day after t.
func StartOfNextDay(t time.Time) time.Time {
	return DayOf(t).AddDate(0, 0, 1)
}

// SameCalendarDay reports whether two timestamps fall on the same calendar
// day in a's location.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// FormatElapsed renders elapsed seconds as HH:MM:SS. Displayed hours are
// hard-capped at 24; the underlying counter keeps running uncapped until
// finalization bounds the settled entry.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 24*3600 {
		return "24:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
