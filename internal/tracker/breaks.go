package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"punchclock/internal/domain"
	"punchclock/internal/repository"
)

var (
	// ErrBreakActive indicates a break is already running.
	ErrBreakActive = errors.New("break already running")

	// ErrNoBreak indicates no break is currently running.
	ErrNoBreak = errors.New("no break running")
)

// maxBreakSeconds caps the accumulator the same way settled hours are
// capped.
const maxBreakSeconds = 24 * 3600

// BreakTracker is the parallel sub-session that accumulates break time
// alongside the work timer. It reuses the timer-state persistence under a
// derived scope: a record with a token is a running break, a record without
// one is the idle accumulator awaiting finalization.
type BreakTracker struct {
	timers repository.TimerStateRepo
	scope  string
	now    func() time.Time
}

// NewBreakTracker creates a BreakTracker for the work scope it shadows.
func NewBreakTracker(timers repository.TimerStateRepo, workScope string) *BreakTracker {
	return &BreakTracker{
		timers: timers,
		scope:  workScope + "/break",
		now:    time.Now,
	}
}

// StartBreak begins a break, carrying forward time from earlier breaks of
// the same session.
func (b *BreakTracker) StartBreak(ctx context.Context) error {
	prior, running, err := b.read(ctx)
	if err != nil {
		return err
	}
	if running {
		return ErrBreakActive
	}
	return b.timers.Put(ctx, b.scope, &domain.TimerSession{
		StartedAt:    b.now(),
		BonusSeconds: prior,
		Token:        uuid.New().String(),
	})
}

// EndBreak stops the running break and folds its duration into the
// accumulator.
func (b *BreakTracker) EndBreak(ctx context.Context) (minutes int, err error) {
	sess, err := b.timers.Get(ctx, b.scope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrCorruptState) {
			return 0, ErrNoBreak
		}
		return 0, err
	}
	if sess.Token == "" {
		return 0, ErrNoBreak
	}

	total := sess.ElapsedSeconds(b.now())
	if total < 0 {
		total = 0
	}
	if total > maxBreakSeconds {
		total = maxBreakSeconds
	}

	idle := &domain.TimerSession{StartedAt: b.now(), BonusSeconds: int(total)}
	if err := b.timers.Put(ctx, b.scope, idle); err != nil {
		return 0, err
	}
	return int(total) / 60, nil
}

// Minutes reports the whole break minutes accumulated so far, including a
// still-running break.
func (b *BreakTracker) Minutes(ctx context.Context) (int, error) {
	seconds, _, err := b.read(ctx)
	if err != nil {
		return 0, err
	}
	return seconds / 60, nil
}

// Running reports whether a break is currently underway.
func (b *BreakTracker) Running(ctx context.Context) (bool, error) {
	_, running, err := b.read(ctx)
	return running, err
}

// Reset clears the accumulator; called once the work session finalizes.
func (b *BreakTracker) Reset(ctx context.Context) error {
	return b.timers.Clear(ctx, b.scope)
}

// read returns accumulated seconds and whether a break is running. Corrupt
// records read as an empty accumulator.
func (b *BreakTracker) read(ctx context.Context) (seconds int, running bool, err error) {
	sess, err := b.timers.Get(ctx, b.scope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrCorruptState) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if sess.Token == "" {
		return sess.BonusSeconds, false, nil
	}
	total := sess.ElapsedSeconds(b.now())
	if total < 0 {
		total = 0
	}
	if total > maxBreakSeconds {
		total = maxBreakSeconds
	}
	return int(total), true, nil
}
