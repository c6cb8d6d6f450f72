package domain

import "time"

// TimeLogEntry is the settled, durable representation of one work session.
// The remote log store owns the record; the client keeps a cached copy so
// the dashboard stays usable when the backend is unreachable.
type TimeLogEntry struct {
	ID       string // local cache identifier
	RemoteID string // server-issued identifier, empty until synced

	Date         time.Time // calendar day the session belongs to
	StartTime    string    // "15:04:05" wall clock
	EndTime      string    // "15:04:05" wall clock, may be empty while in progress
	BreakMinutes int
	TotalHours   float64 // computed, bounded to [0, MaxSessionHours]
	Status       LogStatus
	Activity     string

	SyncState SyncState
	CreatedAt time.Time
}

// Synced reports whether the remote store has accepted this entry.
func (e *TimeLogEntry) Synced() bool {
	return e.SyncState == SyncSynced && e.RemoteID != ""
}
