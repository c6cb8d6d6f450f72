package domain

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidSession indicates a session whose end precedes its start
// (clock skew, timezone change). The settled entry clamps to zero hours
// rather than producing a negative duration.
var ErrInvalidSession = errors.New("session end precedes start")

// MaxSessionHours bounds the total hours of any settled entry.
const MaxSessionHours = 24.0

// TimerSession is the in-flight representation of one work-timing session.
// It is persisted locally so elapsed time can be reconstructed from the
// wall clock after a process restart. At most one session exists per
// storage scope at any time.
type TimerSession struct {
	StartedAt    time.Time
	BonusSeconds int
	// Token fences concurrent writers sharing a storage scope: a tick
	// re-persist only succeeds while the stored token still matches.
	Token string
}

// ElapsedSeconds derives elapsed time from the wall clock, never from an
// in-memory counter, so the value survives reloads.
func (s TimerSession) ElapsedSeconds(now time.Time) int64 {
	return int64(math.Floor(now.Sub(s.StartedAt).Seconds())) + int64(s.BonusSeconds)
}

// Settle converts the session into a durable, bounded TimeLogEntry.
//
// If now falls on a later calendar day than StartedAt, the effective end is
// clamped to midnight of the start day: the session is truncated, never
// carried into the next day. Break minutes are subtracted from the elapsed
// duration and total hours are bounded to [0, MaxSessionHours].
//
// A now that precedes StartedAt settles to a zero-hour entry and reports
// ErrInvalidSession alongside the entry.
func (s TimerSession) Settle(now time.Time, breakMinutes int, activity string) (*TimeLogEntry, error) {
	if breakMinutes < 0 {
		breakMinutes = 0
	}

	end := now
	if !SameCalendarDay(s.StartedAt, now) {
		end = StartOfNextDay(s.StartedAt)
	}

	var settleErr error
	seconds := end.Sub(s.StartedAt).Seconds() + float64(s.BonusSeconds) - float64(breakMinutes*60)
	if now.Before(s.StartedAt) {
		settleErr = ErrInvalidSession
	}
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	if hours > MaxSessionHours {
		hours = MaxSessionHours
	}
	// Keep two decimals; the backend stores totals as decimal hours.
	hours = math.Round(hours*100) / 100

	entry := &TimeLogEntry{
		Date:         DayOf(s.StartedAt),
		StartTime:    FormatWallClock(s.StartedAt),
		EndTime:      FormatWallClock(end),
		BreakMinutes: breakMinutes,
		TotalHours:   hours,
		Status:       StatusPending,
		Activity:     activity,
		SyncState:    SyncPending,
	}
	return entry, settleErr
}
