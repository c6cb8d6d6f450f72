package tracker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchclock/internal/domain"
	"punchclock/internal/repository"
	"punchclock/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoller_RefreshDay_InsertsAndUpdates(t *testing.T) {
	database := testutil.NewTestDB(t)
	logs := repository.NewSQLiteLogEntryRepo(database)
	ctx := context.Background()

	day := time.Date(2026, 2, 21, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{remote: []*domain.TimeLogEntry{
		{
			RemoteID:   "srv-1",
			Date:       domain.DayOf(day),
			StartTime:  "09:00:00",
			EndTime:    "17:00:00",
			TotalHours: 8.0,
			Status:     domain.StatusPending,
			SyncState:  domain.SyncSynced,
		},
	}}

	p := &Poller{Log: discardLogger(), Logs: logs, Store: store, Interval: time.Minute}

	require.NoError(t, p.RefreshDay(ctx, day))

	cached, err := logs.GetByRemoteID(ctx, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, cached.TotalHours)
	assert.Equal(t, domain.StatusPending, cached.Status)

	// The approval workflow moves the entry remotely; the next refresh
	// updates the cached copy in place.
	store.remote[0].Status = domain.StatusApproved
	require.NoError(t, p.RefreshDay(ctx, day))

	refreshed, err := logs.GetByRemoteID(ctx, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, cached.ID, refreshed.ID, "cache identity is stable across refreshes")
	assert.Equal(t, domain.StatusApproved, refreshed.Status)

	all, err := logs.ListRecent(ctx, 30000)
	require.NoError(t, err)
	assert.Len(t, all, 1, "refresh must not duplicate entries")
}

func TestPoller_RefreshDay_RemoteError(t *testing.T) {
	database := testutil.NewTestDB(t)
	logs := repository.NewSQLiteLogEntryRepo(database)
	store := &fakeStore{listErr: context.DeadlineExceeded}

	p := &Poller{Log: discardLogger(), Logs: logs, Store: store, Interval: time.Minute}

	err := p.RefreshDay(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestPoller_Run_StopsOnCancel(t *testing.T) {
	database := testutil.NewTestDB(t)
	logs := repository.NewSQLiteLogEntryRepo(database)

	p := &Poller{Log: discardLogger(), Logs: logs, Store: &fakeStore{}, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPoller_Run_MissingDependencies(t *testing.T) {
	p := &Poller{Log: discardLogger(), Interval: time.Second}
	assert.Error(t, p.Run(context.Background()))
}
