package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"punchclock/internal/db"
	"punchclock/internal/domain"
)

// timerRecord is the persisted JSON shape of an in-flight session. The
// startTime/bonusSeconds fields match the record the web dashboard writes
// to browser storage; sessionToken is a local-only fencing addition.
type timerRecord struct {
	StartTime    string `json:"startTime"`
	BonusSeconds int    `json:"bonusSeconds"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// SQLiteTimerStateRepo implements TimerStateRepo over the timer_state table.
type SQLiteTimerStateRepo struct {
	db db.DBTX
}

// NewSQLiteTimerStateRepo creates a new SQLiteTimerStateRepo.
func NewSQLiteTimerStateRepo(db db.DBTX) *SQLiteTimerStateRepo {
	return &SQLiteTimerStateRepo{db: db}
}

func (r *SQLiteTimerStateRepo) Get(ctx context.Context, scope string) (*domain.TimerSession, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM timer_state WHERE scope = ?`, scope,
	).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("timer state: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("reading timer state: %w", err)
	}
	return decodeTimerRecord(payload)
}

func (r *SQLiteTimerStateRepo) Put(ctx context.Context, scope string, s *domain.TimerSession) error {
	payload, err := encodeTimerRecord(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO timer_state (scope, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(scope) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		scope, payload, nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("writing timer state: %w", err)
	}
	return nil
}

func (r *SQLiteTimerStateRepo) Refresh(ctx context.Context, scope string, s *domain.TimerSession) error {
	payload, err := encodeTimerRecord(s)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE timer_state SET payload = ?, updated_at = ?
		 WHERE scope = ? AND json_extract(payload, '$.sessionToken') = ?`,
		payload, nowUTC(), scope, s.Token,
	)
	if err != nil {
		return fmt.Errorf("refreshing timer state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("refreshing timer state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("refreshing timer state: %w", ErrStaleToken)
	}
	return nil
}

func (r *SQLiteTimerStateRepo) Clear(ctx context.Context, scope string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timer_state WHERE scope = ?`, scope)
	if err != nil {
		return fmt.Errorf("clearing timer state: %w", err)
	}
	return nil
}

func encodeTimerRecord(s *domain.TimerSession) (string, error) {
	rec := timerRecord{
		StartTime:    s.StartedAt.Format(time.RFC3339),
		BonusSeconds: s.BonusSeconds,
		SessionToken: s.Token,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding timer record: %w", err)
	}
	return string(data), nil
}

func decodeTimerRecord(payload string) (*domain.TimerSession, error) {
	var rec timerRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decoding timer record: %w", ErrCorruptState)
	}
	startedAt, err := time.Parse(time.RFC3339, rec.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parsing startTime: %w", ErrCorruptState)
	}
	return &domain.TimerSession{
		StartedAt:    startedAt,
		BonusSeconds: rec.BonusSeconds,
		Token:        rec.SessionToken,
	}, nil
}
