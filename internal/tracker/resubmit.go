package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"punchclock/internal/remote"
	"punchclock/internal/repository"
)

// Resubmitter retries cache entries the remote store has not accepted yet.
// Finalization appends entries optimistically on submission failure; this
// is the reconciliation pass that eventually restores server authority.
type Resubmitter struct {
	Log      *slog.Logger
	Logs     repository.LogEntryRepo
	Store    remote.Store
	Interval time.Duration
}

// ResubmitSummary reports the outcome of one resubmission pass.
type ResubmitSummary struct {
	Attempted int
	Synced    int
	Rejected  int
}

// Run retries on an interval until ctx is cancelled.
func (r *Resubmitter) Run(ctx context.Context) error {
	if r.Logs == nil || r.Store == nil {
		return errors.New("resubmitter not initialized: missing dependencies")
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.Log.Warn("resubmit pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce performs a single pass over all sync-pending entries. Entries the
// server rejects outright are counted and left pending for manual review;
// transport failures stop the pass early (the store is likely still down).
func (r *Resubmitter) RunOnce(ctx context.Context) (ResubmitSummary, error) {
	var summary ResubmitSummary

	pending, err := r.Logs.ListUnsynced(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing unsynced entries: %w", err)
	}

	for _, entry := range pending {
		summary.Attempted++

		remoteID, err := r.Store.Submit(ctx, entry)
		if err != nil {
			if errors.Is(err, remote.ErrRejected) {
				summary.Rejected++
				r.Log.Warn("entry rejected by log store",
					slog.String("entry_id", entry.ID),
					slog.String("error", err.Error()))
				continue
			}
			return summary, fmt.Errorf("resubmitting entry %s: %w", entry.ID, err)
		}

		if err := r.Logs.MarkSynced(ctx, entry.ID, remoteID); err != nil {
			return summary, fmt.Errorf("marking entry %s synced: %w", entry.ID, err)
		}
		summary.Synced++
		r.Log.Info("entry synced",
			slog.String("entry_id", entry.ID),
			slog.String("remote_id", remoteID))
	}

	return summary, nil
}
