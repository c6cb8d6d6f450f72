package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"punchclock/internal/db"
	"punchclock/internal/domain"
)

const logEntryColumns = `id, remote_id, date, start_time, end_time,
	break_minutes, total_hours, status, activity, sync_state, created_at`

// SQLiteLogEntryRepo implements LogEntryRepo over the time_log_entries table.
type SQLiteLogEntryRepo struct {
	db db.DBTX
}

// NewSQLiteLogEntryRepo creates a new SQLiteLogEntryRepo.
func NewSQLiteLogEntryRepo(db db.DBTX) *SQLiteLogEntryRepo {
	return &SQLiteLogEntryRepo{db: db}
}

func (r *SQLiteLogEntryRepo) Create(ctx context.Context, e *domain.TimeLogEntry) error {
	query := `INSERT INTO time_log_entries
		(id, remote_id, date, start_time, end_time, break_minutes, total_hours, status, activity, sync_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.RemoteID,
		domain.FormatDay(e.Date),
		e.StartTime,
		e.EndTime,
		e.BreakMinutes,
		e.TotalHours,
		string(e.Status),
		e.Activity,
		string(e.SyncState),
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time log entry: %w", err)
	}
	return nil
}

func (r *SQLiteLogEntryRepo) Update(ctx context.Context, e *domain.TimeLogEntry) error {
	query := `UPDATE time_log_entries SET
		remote_id = ?, date = ?, start_time = ?, end_time = ?, break_minutes = ?,
		total_hours = ?, status = ?, activity = ?, sync_state = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		e.RemoteID,
		domain.FormatDay(e.Date),
		e.StartTime,
		e.EndTime,
		e.BreakMinutes,
		e.TotalHours,
		string(e.Status),
		e.Activity,
		string(e.SyncState),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating time log entry: %w", err)
	}
	return nil
}

func (r *SQLiteLogEntryRepo) GetByID(ctx context.Context, id string) (*domain.TimeLogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM time_log_entries WHERE id = ?`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteLogEntryRepo) GetByRemoteID(ctx context.Context, remoteID string) (*domain.TimeLogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM time_log_entries WHERE remote_id = ?`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, remoteID))
}

func (r *SQLiteLogEntryRepo) GetByDate(ctx context.Context, day time.Time) (*domain.TimeLogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM time_log_entries WHERE date = ? ORDER BY created_at LIMIT 1`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, domain.FormatDay(day)))
}

func (r *SQLiteLogEntryRepo) ListRecent(ctx context.Context, days int) ([]*domain.TimeLogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM time_log_entries
		WHERE date >= date('now', ? || ' days')
		ORDER BY date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, fmt.Sprintf("-%d", days))
	if err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	defer rows.Close()
	return r.scanEntries(rows)
}

func (r *SQLiteLogEntryRepo) ListUnsynced(ctx context.Context) ([]*domain.TimeLogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM time_log_entries
		WHERE sync_state = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, string(domain.SyncPending))
	if err != nil {
		return nil, fmt.Errorf("listing unsynced entries: %w", err)
	}
	defer rows.Close()
	return r.scanEntries(rows)
}

func (r *SQLiteLogEntryRepo) MarkSynced(ctx context.Context, id, remoteID string) error {
	query := `UPDATE time_log_entries SET remote_id = ?, sync_state = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, remoteID, string(domain.SyncSynced), id)
	if err != nil {
		return fmt.Errorf("marking entry synced: %w", err)
	}
	return nil
}

func (r *SQLiteLogEntryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM time_log_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting time log entry: %w", err)
	}
	return nil
}

// scanEntry scans a single entry from a *sql.Row.
func (r *SQLiteLogEntryRepo) scanEntry(row *sql.Row) (*domain.TimeLogEntry, error) {
	var e domain.TimeLogEntry
	var dateStr, statusStr, syncStr, createdAtStr string

	err := row.Scan(
		&e.ID, &e.RemoteID, &dateStr, &e.StartTime, &e.EndTime,
		&e.BreakMinutes, &e.TotalHours, &statusStr, &e.Activity, &syncStr, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time log entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time log entry: %w", err)
	}

	return r.populateEntry(&e, dateStr, statusStr, syncStr, createdAtStr)
}

// scanEntries scans multiple entries from *sql.Rows.
func (r *SQLiteLogEntryRepo) scanEntries(rows *sql.Rows) ([]*domain.TimeLogEntry, error) {
	var entries []*domain.TimeLogEntry
	for rows.Next() {
		var e domain.TimeLogEntry
		var dateStr, statusStr, syncStr, createdAtStr string

		err := rows.Scan(
			&e.ID, &e.RemoteID, &dateStr, &e.StartTime, &e.EndTime,
			&e.BreakMinutes, &e.TotalHours, &statusStr, &e.Activity, &syncStr, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}

		entry, parseErr := r.populateEntry(&e, dateStr, statusStr, syncStr, createdAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// populateEntry fills in parsed fields after scanning raw strings.
func (r *SQLiteLogEntryRepo) populateEntry(e *domain.TimeLogEntry, dateStr, statusStr, syncStr, createdAtStr string) (*domain.TimeLogEntry, error) {
	var parseErr error
	e.Date, parseErr = time.Parse("2006-01-02", dateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing date: %w", parseErr)
	}
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.Status = domain.LogStatus(statusStr)
	e.SyncState = domain.SyncState(syncStr)
	return e, nil
}
