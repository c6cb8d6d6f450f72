package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations are executed in order on every open. Statements are idempotent
// (CREATE TABLE IF NOT EXISTS); ALTER TABLE additions tolerate re-runs via
// the duplicate-column check in Migrate.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS timer_state (
		scope      TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS time_log_entries (
		id            TEXT PRIMARY KEY,
		remote_id     TEXT NOT NULL DEFAULT '',
		date          TEXT NOT NULL,
		start_time    TEXT NOT NULL,
		end_time      TEXT NOT NULL DEFAULT '',
		break_minutes INTEGER NOT NULL DEFAULT 0,
		total_hours   REAL NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'pending',
		activity      TEXT NOT NULL DEFAULT '',
		sync_state    TEXT NOT NULL DEFAULT 'sync_pending',
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_log_entries_date
		ON time_log_entries(date)`,

	`CREATE INDEX IF NOT EXISTS idx_time_log_entries_sync_state
		ON time_log_entries(sync_state)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
