package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestSettle_RegularWorkday(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T09:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-21T17:30:00Z"), 0, "")
	require.NoError(t, err)

	assert.Equal(t, 8.5, entry.TotalHours)
	assert.Equal(t, "09:00:00", entry.StartTime)
	assert.Equal(t, "17:30:00", entry.EndTime)
	assert.Equal(t, "2026-02-21", FormatDay(entry.Date))
	assert.Equal(t, StatusPending, entry.Status)
	assert.Equal(t, 0, entry.BreakMinutes)
}

func TestSettle_DayCrossingClampsToMidnight(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T23:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-22T03:00:00Z"), 0, "")
	require.NoError(t, err)

	// Truncated at midnight of the start day, not carried into the next.
	assert.Equal(t, "00:00:00", entry.EndTime)
	assert.Equal(t, "2026-02-21", FormatDay(entry.Date))
	assert.Equal(t, 1.0, entry.TotalHours)
}

func TestSettle_NeverExceedsTwentyFourHours(t *testing.T) {
	start := mustTime(t, "2026-02-21T00:00:00Z")
	s := TimerSession{StartedAt: start, BonusSeconds: 48 * 3600}

	// The bonus alone pushes raw duration past a day even after the
	// midnight clamp; the hour cap must still hold.
	entry, err := s.Settle(start.Add(30*time.Hour), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 24.0, entry.TotalHours)
}

func TestSettle_BreakMinutesSubtracted(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T09:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-21T17:30:00Z"), 30, "code review")
	require.NoError(t, err)

	assert.Equal(t, 8.0, entry.TotalHours)
	assert.Equal(t, 30, entry.BreakMinutes)
	assert.Equal(t, "code review", entry.Activity)
}

func TestSettle_EndBeforeStartClampsToZero(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T09:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-21T08:00:00Z"), 0, "")
	require.ErrorIs(t, err, ErrInvalidSession)
	require.NotNil(t, entry, "a clamped entry is still produced")
	assert.Equal(t, 0.0, entry.TotalHours)
}

func TestSettle_BreaksLongerThanSession(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T09:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-21T09:10:00Z"), 60, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.TotalHours, "breaks exceeding elapsed time clamp to zero")
}

func TestSettle_AlwaysMarkedSyncPending(t *testing.T) {
	s := TimerSession{StartedAt: mustTime(t, "2026-02-21T09:00:00Z")}

	entry, err := s.Settle(mustTime(t, "2026-02-21T10:00:00Z"), 0, "")
	require.NoError(t, err)
	assert.Equal(t, SyncPending, entry.SyncState)
	assert.False(t, entry.Synced())
}

func TestElapsedSeconds(t *testing.T) {
	start := mustTime(t, "2026-02-21T09:00:00Z")

	tests := []struct {
		name  string
		bonus int
		now   time.Time
		want  int64
	}{
		{"one minute in", 0, start.Add(time.Minute), 60},
		{"bonus added", 90, start.Add(time.Minute), 150},
		{"sub-second floor", 0, start.Add(2500 * time.Millisecond), 2},
		{"at start", 0, start, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := TimerSession{StartedAt: start, BonusSeconds: tt.bonus}
			assert.Equal(t, tt.want, s.ElapsedSeconds(tt.now))
		})
	}
}
