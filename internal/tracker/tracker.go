package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"punchclock/internal/db"
	"punchclock/internal/domain"
	"punchclock/internal/remote"
	"punchclock/internal/repository"
)

var (
	// ErrNoSession indicates no timer session is currently persisted.
	ErrNoSession = errors.New("no active session")

	// ErrSessionActive indicates a timer session is already persisted;
	// starting another is a no-op.
	ErrSessionActive = errors.New("session already running")

	// ErrAlreadyLogged indicates a log entry already covers today; one
	// work session settles per day.
	ErrAlreadyLogged = errors.New("a log entry already exists for today")
)

// DefaultScope is the timer storage scope used by a single-user install.
const DefaultScope = "default"

// Config holds tracker settings.
type Config struct {
	Scope        string
	TickInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// FinalizeResult reports how a finalized session settled.
type FinalizeResult struct {
	Entry *domain.TimeLogEntry

	// SubmissionErr is non-nil when the remote store did not accept the
	// entry. The entry was still appended to the local cache as
	// sync_pending; the resubmitter retries it later.
	SubmissionErr error
}

// Tracker owns the lifecycle of the single active work-timing session for
// one storage scope: start, live tick, persistence across restarts, and
// finalization into a durable log entry.
type Tracker struct {
	timers repository.TimerStateRepo
	logs   repository.LogEntryRepo
	store  remote.Store
	uow    db.UnitOfWork
	obs    Observer
	cfg    Config

	// now is swappable for tests.
	now func() time.Time

	mu      sync.Mutex
	current *domain.TimerSession
}

// New creates a Tracker. store may be nil only in tests that never finalize.
func New(timers repository.TimerStateRepo, logs repository.LogEntryRepo, store remote.Store, uow db.UnitOfWork, obs Observer, cfg Config) *Tracker {
	return &Tracker{
		timers: timers,
		logs:   logs,
		store:  store,
		uow:    uow,
		obs:    observerOrNoop(obs),
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

// Start begins a new session at now. It is a guarded no-op: an already
// persisted session reports ErrSessionActive, and an existing log entry for
// today reports ErrAlreadyLogged (one settled session per day, enforced
// client-side against the local cache).
func (t *Tracker) Start(ctx context.Context) (*domain.TimerSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if _, err := t.load(ctx); err == nil {
		return nil, ErrSessionActive
	} else if !errors.Is(err, ErrNoSession) {
		return nil, err
	}

	if _, err := t.logs.GetByDate(ctx, now); err == nil {
		return nil, ErrAlreadyLogged
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking today's log: %w", err)
	}

	sess := &domain.TimerSession{
		StartedAt:    now,
		BonusSeconds: 0,
		Token:        uuid.New().String(),
	}
	if err := t.timers.Put(ctx, t.cfg.Scope, sess); err != nil {
		return nil, err
	}
	t.current = sess

	t.obs.ObserveEvent(ctx, Event{Name: "session_started", Fields: map[string]any{
		"scope":      t.cfg.Scope,
		"started_at": sess.StartedAt.Format(time.RFC3339),
	}})
	return sess, nil
}

// Resume reads the persisted session back so elapsed time continues from
// the wall-clock delta after a restart. A corrupt persisted record is
// abandoned and reads as no active session.
func (t *Tracker) Resume(ctx context.Context) (*domain.TimerSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// load fetches the persisted session and caches it in memory.
// Caller holds t.mu.
func (t *Tracker) load(ctx context.Context) (*domain.TimerSession, error) {
	sess, err := t.timers.Get(ctx, t.cfg.Scope)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptState) {
			// Unreadable prior session: abandon it and report none.
			_ = t.timers.Clear(ctx, t.cfg.Scope)
			t.obs.ObserveEvent(ctx, Event{Name: "session_abandoned", Err: err})
			t.current = nil
			return nil, ErrNoSession
		}
		if errors.Is(err, repository.ErrNotFound) {
			t.current = nil
			return nil, ErrNoSession
		}
		return nil, err
	}
	t.current = sess
	return sess, nil
}

// Elapsed reports the current session's elapsed seconds, derived from the
// wall clock.
func (t *Tracker) Elapsed(ctx context.Context) (int64, error) {
	sess, err := t.Resume(ctx)
	if err != nil {
		return 0, err
	}
	return sess.ElapsedSeconds(t.now()), nil
}

// Run drives the once-per-second tick loop until ctx is cancelled, the
// session is finalized elsewhere, or a newer session fences this one out.
// Each tick re-persists the record so another process observes a fresh
// state, and notifies the observer with the formatted elapsed time.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.tick(ctx); err != nil {
				if errors.Is(err, ErrNoSession) || errors.Is(err, repository.ErrStaleToken) {
					return err
				}
				// Transient persistence hiccups don't stop the loop;
				// elapsed time derives from the wall clock regardless.
				t.obs.ObserveEvent(ctx, Event{Name: "tick_failed", Err: err})
			}
		}
	}
}

func (t *Tracker) tick(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.current
	if sess == nil {
		var err error
		sess, err = t.load(ctx)
		if err != nil {
			return err
		}
	}

	if err := t.timers.Refresh(ctx, t.cfg.Scope, sess); err != nil {
		if errors.Is(err, repository.ErrStaleToken) {
			t.current = nil
		}
		return err
	}

	elapsed := sess.ElapsedSeconds(t.now())
	t.obs.ObserveEvent(ctx, Event{Name: "tick", Fields: map[string]any{
		"elapsed_seconds": elapsed,
		"display":         domain.FormatElapsed(elapsed),
	}})
	return nil
}

// Finalize converts the active session into exactly one bounded log entry:
// day-boundary clamp, break subtraction, [0,24] hour cap, then remote
// submission with an optimistic local fallback. The persisted timer record
// is cleared unconditionally once finalization is underway, so a session is
// never left stuck — even when submission and the local fallback both fail.
func (t *Tracker) Finalize(ctx context.Context, breakMinutes int, activity string) (*FinalizeResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now()
	entry, settleErr := sess.Settle(now, breakMinutes, activity)
	if settleErr != nil {
		// End precedes start (clock skew): no sensible entry can be
		// produced. Drop the session rather than logging nonsense.
		_ = t.timers.Clear(ctx, t.cfg.Scope)
		t.current = nil
		t.obs.ObserveEvent(ctx, Event{Name: "session_invalid", Err: settleErr})
		return nil, settleErr
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = now.UTC()

	result := &FinalizeResult{Entry: entry}

	remoteID, submitErr := t.store.Submit(ctx, entry)
	if submitErr == nil {
		entry.RemoteID = remoteID
		entry.SyncState = domain.SyncSynced
	} else {
		result.SubmissionErr = submitErr
		t.obs.ObserveEvent(ctx, Event{Name: "submit_failed", Err: submitErr})
	}

	// Append to the cache and clear the timer record atomically.
	persistErr := t.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLogs := repository.NewSQLiteLogEntryRepo(tx)
		txTimers := repository.NewSQLiteTimerStateRepo(tx)

		if err := txLogs.Create(ctx, entry); err != nil {
			return err
		}
		return txTimers.Clear(ctx, t.cfg.Scope)
	})
	if persistErr != nil {
		// Cleanup is unconditional: clear the record on its own so the
		// timer is never stuck, even at the cost of losing this entry.
		_ = t.timers.Clear(ctx, t.cfg.Scope)
		t.current = nil
		return nil, fmt.Errorf("caching finalized entry: %w", persistErr)
	}
	t.current = nil

	t.obs.ObserveEvent(ctx, Event{Name: "session_finalized", Fields: map[string]any{
		"date":        domain.FormatDay(entry.Date),
		"total_hours": entry.TotalHours,
		"synced":      entry.Synced(),
	}})
	return result, nil
}
