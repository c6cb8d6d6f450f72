package repository

import (
	"context"
	"time"

	"punchclock/internal/domain"
)

// TimerStateRepo persists the single in-flight TimerSession for a storage
// scope. A scope models one user's local timer slot; at most one record
// exists per scope.
type TimerStateRepo interface {
	Get(ctx context.Context, scope string) (*domain.TimerSession, error)
	// Put stores the session unconditionally (last write wins).
	Put(ctx context.Context, scope string, s *domain.TimerSession) error
	// Refresh re-persists the session only while the stored record still
	// carries the same token, fencing out writers from a newer session.
	Refresh(ctx context.Context, scope string, s *domain.TimerSession) error
	Clear(ctx context.Context, scope string) error
}

// LogEntryRepo is the local cache of settled time-log entries.
type LogEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeLogEntry) error
	Update(ctx context.Context, e *domain.TimeLogEntry) error
	GetByID(ctx context.Context, id string) (*domain.TimeLogEntry, error)
	GetByRemoteID(ctx context.Context, remoteID string) (*domain.TimeLogEntry, error)
	GetByDate(ctx context.Context, day time.Time) (*domain.TimeLogEntry, error)
	ListRecent(ctx context.Context, days int) ([]*domain.TimeLogEntry, error)
	ListUnsynced(ctx context.Context) ([]*domain.TimeLogEntry, error)
	MarkSynced(ctx context.Context, id, remoteID string) error
	Delete(ctx context.Context, id string) error
}
