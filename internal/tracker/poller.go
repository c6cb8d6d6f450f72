package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"punchclock/internal/domain"
	"punchclock/internal/remote"
	"punchclock/internal/repository"
)

// Poller periodically refreshes the local cache with the remote store's
// view of the current day. It is read-only toward the reconciler: it never
// touches the timer record, only the entry cache.
type Poller struct {
	Log      *slog.Logger
	Logs     repository.LogEntryRepo
	Store    remote.Store
	Interval time.Duration

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run polls until ctx is cancelled. Failed refreshes are logged and the
// next interval tries again; the cache keeps serving the last good state.
func (p *Poller) Run(ctx context.Context) error {
	if p.Logs == nil || p.Store == nil {
		return errors.New("poller not initialized: missing dependencies")
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.RefreshDay(ctx, p.now()); err != nil {
				p.Log.Warn("poll failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RefreshDay pulls the remote entries for day into the local cache,
// updating cached copies by their server-issued ID and inserting the rest.
func (p *Poller) RefreshDay(ctx context.Context, day time.Time) error {
	entries, err := p.Store.ListByDay(ctx, day)
	if err != nil {
		return fmt.Errorf("listing remote entries: %w", err)
	}

	for _, remoteEntry := range entries {
		cached, err := p.Logs.GetByRemoteID(ctx, remoteEntry.RemoteID)
		switch {
		case err == nil:
			remoteEntry.ID = cached.ID
			remoteEntry.CreatedAt = cached.CreatedAt
			if err := p.Logs.Update(ctx, remoteEntry); err != nil {
				return fmt.Errorf("refreshing cached entry: %w", err)
			}
		case errors.Is(err, repository.ErrNotFound):
			remoteEntry.ID = uuid.New().String()
			remoteEntry.CreatedAt = p.now().UTC()
			if err := p.Logs.Create(ctx, remoteEntry); err != nil {
				return fmt.Errorf("caching remote entry: %w", err)
			}
		default:
			return err
		}
	}

	p.Log.Debug("day refreshed",
		slog.String("date", domain.FormatDay(day)),
		slog.Int("count", len(entries)))
	return nil
}
