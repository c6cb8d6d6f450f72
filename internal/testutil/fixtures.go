package testutil

import (
	"time"

	"github.com/google/uuid"

	"punchclock/internal/domain"
)

// TimerSession options
type SessionOption func(*domain.TimerSession)

func WithStartedAt(t time.Time) SessionOption {
	return func(s *domain.TimerSession) {
		s.StartedAt = t
	}
}

func WithBonusSeconds(n int) SessionOption {
	return func(s *domain.TimerSession) {
		s.BonusSeconds = n
	}
}

func WithToken(token string) SessionOption {
	return func(s *domain.TimerSession) {
		s.Token = token
	}
}

func NewTestSession(opts ...SessionOption) *domain.TimerSession {
	s := &domain.TimerSession{
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Token:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TimeLogEntry options
type EntryOption func(*domain.TimeLogEntry)

func WithDate(day time.Time) EntryOption {
	return func(e *domain.TimeLogEntry) {
		e.Date = domain.DayOf(day)
	}
}

func WithTotalHours(h float64) EntryOption {
	return func(e *domain.TimeLogEntry) {
		e.TotalHours = h
	}
}

func WithSyncState(s domain.SyncState) EntryOption {
	return func(e *domain.TimeLogEntry) {
		e.SyncState = s
	}
}

func WithRemoteID(id string) EntryOption {
	return func(e *domain.TimeLogEntry) {
		e.RemoteID = id
	}
}

func WithActivity(a string) EntryOption {
	return func(e *domain.TimeLogEntry) {
		e.Activity = a
	}
}

func NewTestEntry(opts ...EntryOption) *domain.TimeLogEntry {
	now := time.Now().UTC()
	e := &domain.TimeLogEntry{
		ID:         uuid.New().String(),
		Date:       domain.DayOf(now),
		StartTime:  "09:00:00",
		EndTime:    "17:00:00",
		TotalHours: 8.0,
		Status:     domain.StatusPending,
		SyncState:  domain.SyncSynced,
		CreatedAt:  now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
