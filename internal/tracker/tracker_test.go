package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchclock/internal/domain"
	"punchclock/internal/repository"
	"punchclock/internal/testutil"
)

// fakeStore is an in-memory remote.Store.
type fakeStore struct {
	mu        sync.Mutex
	submitErr error
	submitted []*domain.TimeLogEntry
	nextID    int
	remote    []*domain.TimeLogEntry
	listErr   error
}

func (f *fakeStore) Submit(ctx context.Context, e *domain.TimeLogEntry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.nextID++
	copied := *e
	f.submitted = append(f.submitted, &copied)
	return f.serverID(f.nextID), nil
}

func (f *fakeStore) Update(ctx context.Context, remoteID string, e *domain.TimeLogEntry) error {
	return f.submitErr
}

func (f *fakeStore) ListByDay(ctx context.Context, day time.Time) ([]*domain.TimeLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.TimeLogEntry
	for _, e := range f.remote {
		if domain.FormatDay(e.Date) == domain.FormatDay(day) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStore) serverID(n int) string {
	return fmt.Sprintf("srv-%d", n)
}

// fakeClock is a settable now() source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type trackerFixture struct {
	tracker *Tracker
	timers  repository.TimerStateRepo
	logs    repository.LogEntryRepo
	store   *fakeStore
	clock   *fakeClock
}

func newFixture(t *testing.T) *trackerFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	timers := repository.NewSQLiteTimerStateRepo(database)
	logs := repository.NewSQLiteLogEntryRepo(database)
	store := &fakeStore{}
	clock := &fakeClock{t: time.Date(2026, 2, 21, 9, 0, 0, 0, time.UTC)}

	tr := New(timers, logs, store, testutil.NewTestUoW(database), NoopObserver{}, Config{})
	tr.now = clock.Now

	return &trackerFixture{tracker: tr, timers: timers, logs: logs, store: store, clock: clock}
}

func TestStart_PersistsNewSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.tracker.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.BonusSeconds)
	assert.NotEmpty(t, sess.Token)

	persisted, err := f.timers.Get(ctx, DefaultScope)
	require.NoError(t, err)
	assert.True(t, persisted.StartedAt.Equal(f.clock.Now()))
}

func TestStart_NoOpWhenSessionActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	_, err = f.tracker.Start(ctx)
	assert.ErrorIs(t, err, ErrSessionActive)

	persisted, err := f.timers.Get(ctx, DefaultScope)
	require.NoError(t, err)
	assert.Equal(t, first.Token, persisted.Token, "no double session is created")
}

func TestStart_NoOpWhenTodayAlreadyLogged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := testutil.NewTestEntry(testutil.WithDate(f.clock.Now()))
	require.NoError(t, f.logs.Create(ctx, entry))

	_, err := f.tracker.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyLogged)

	_, err = f.timers.Get(ctx, DefaultScope)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResume_ElapsedIsReloadInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)
	f.clock.Advance(95 * time.Minute)

	// A brand-new tracker over the same database stands in for a
	// restarted process.
	reloaded := New(f.timers, f.logs, f.store, nil, NoopObserver{}, Config{})
	reloaded.now = f.clock.Now

	elapsed, err := reloaded.Elapsed(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 95*60, elapsed, 1, "elapsed derives from the wall clock, not an in-memory counter")
}

func TestResume_NoSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Resume(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResume_CorruptRecordAbandonedSilently(t *testing.T) {
	database := testutil.NewTestDB(t)
	timers := repository.NewSQLiteTimerStateRepo(database)
	logs := repository.NewSQLiteLogEntryRepo(database)
	ctx := context.Background()

	_, err := database.ExecContext(ctx,
		`INSERT INTO timer_state (scope, payload, updated_at) VALUES (?, ?, ?)`,
		DefaultScope, `{broken`, time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)

	tr := New(timers, logs, &fakeStore{}, testutil.NewTestUoW(database), NoopObserver{}, Config{})

	_, err = tr.Resume(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	// The corrupt record is gone; a fresh session can start.
	_, err = tr.Start(ctx)
	require.NoError(t, err)
}

func TestFinalize_RegularDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 2, 21, 17, 30, 0, 0, time.UTC))
	result, err := f.tracker.Finalize(ctx, 0, "sprint work")
	require.NoError(t, err)
	require.Nil(t, result.SubmissionErr)

	entry := result.Entry
	assert.Equal(t, 8.5, entry.TotalHours)
	assert.Equal(t, "09:00:00", entry.StartTime)
	assert.Equal(t, "17:30:00", entry.EndTime)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.True(t, entry.Synced())

	// Exactly one cached copy, synced.
	cached, err := f.logs.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, cached.SyncState)
	assert.Equal(t, entry.RemoteID, cached.RemoteID)

	// The timer record is gone.
	_, err = f.tracker.Resume(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFinalize_MidnightClamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(time.Date(2026, 2, 21, 23, 0, 0, 0, time.UTC))
	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 2, 22, 3, 0, 0, 0, time.UTC))
	result, err := f.tracker.Finalize(ctx, 0, "")
	require.NoError(t, err)

	assert.Equal(t, "00:00:00", result.Entry.EndTime)
	assert.Equal(t, "2026-02-21", domain.FormatDay(result.Entry.Date))
	assert.Equal(t, 1.0, result.Entry.TotalHours)
}

func TestFinalize_RemoteFailureFallsBackToCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)
	f.store.submitErr = errors.New("boom")

	f.clock.Advance(4 * time.Hour)
	result, err := f.tracker.Finalize(ctx, 0, "")
	require.NoError(t, err, "submission failure downgrades to a local append")
	require.Error(t, result.SubmissionErr)

	cached, err := f.logs.GetByID(ctx, result.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncPending, cached.SyncState)
	assert.Empty(t, cached.RemoteID)

	// Cleanup is unconditional on both paths.
	_, err = f.tracker.Resume(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFinalize_EndBeforeStartIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	f.clock.Advance(-time.Hour)
	_, err = f.tracker.Finalize(ctx, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	// No nonsense entry is cached, and the session is not stuck.
	entries, err := f.logs.ListRecent(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = f.tracker.Resume(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFinalize_NoSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Finalize(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFinalize_ThenStartBlockedForToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	_, err = f.tracker.Finalize(ctx, 0, "")
	require.NoError(t, err)

	_, err = f.tracker.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyLogged, "one settled session per day")
}

func TestRun_TicksRepersistAndNotify(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	var mu sync.Mutex
	var ticks int
	f.tracker.obs = observerFunc(func(_ context.Context, e Event) {
		if e.Name == "tick" {
			mu.Lock()
			ticks++
			mu.Unlock()
		}
	})
	f.tracker.cfg.TickInterval = 5 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- f.tracker.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 3
	}, time.Second, time.Millisecond)

	cancel()
	err = <-done
	assert.ErrorIs(t, err, context.Canceled, "cancellation is honored")
}

func TestRun_StaleTokenStopsLoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.Start(ctx)
	require.NoError(t, err)

	// Another writer takes over the scope with a new session.
	usurper := testutil.NewTestSession(testutil.WithStartedAt(f.clock.Now()))
	require.NoError(t, f.timers.Put(ctx, DefaultScope, usurper))

	f.tracker.cfg.TickInterval = 5 * time.Millisecond
	err = f.tracker.Run(ctx)
	assert.ErrorIs(t, err, repository.ErrStaleToken, "fenced-out writers stop ticking")
}

// observerFunc adapts a function to the Observer interface.
type observerFunc func(context.Context, Event)

func (f observerFunc) ObserveEvent(ctx context.Context, e Event) { f(ctx, e) }
