package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/notify"
	"github.com/tempora-app/tempora/internal/repository"
)

// Sweep cadences, wired to the periodic trigger by the composition root.
const (
	MissedAckSweepInterval   = 1 * time.Minute
	LongRunningSweepInterval = 5 * time.Minute
	InterruptSweepInterval   = 1 * time.Minute
)

const (
	// longRunningThreshold is how long a timer may run before the
	// still-running nudge fires. An attention nudge, not a budget signal.
	longRunningThreshold = 90 * time.Minute

	// nudgeResendInterval throttles repeated nudges for the same timer.
	nudgeResendInterval = 30 * time.Minute
)

// InterruptRequester is the slice of the timer service the due-interrupt
// sweep drives.
type InterruptRequester interface {
	RequestInterrupt(ctx context.Context, id domain.Identity) (*InterruptResult, error)
}

// Reaper catches timer state the deferred tasks failed to advance.
// Single-shot deferred tasks are lost on process restart, so each periodic
// sweep re-derives its work from persisted deadlines: overdue check-in
// prompts, missed-ack autostops, and long-running nudges.
type Reaper struct {
	timers     repository.TimerRepo
	uow        db.UnitOfWork
	interrupts InterruptRequester
	alerts     AlertSender
	logger     *slog.Logger
	now        func() time.Time
}

// NewReaper wires the periodic sweeps.
func NewReaper(timers repository.TimerRepo, uow db.UnitOfWork, interrupts InterruptRequester, alerts AlertSender, logger *slog.Logger, now func() time.Time) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Reaper{timers: timers, uow: uow, interrupts: interrupts, alerts: alerts, logger: logger, now: now}
}

// SweepDueInterrupts raises the check-in prompt for timers whose interrupt
// deadline has passed without the one-shot deferred task firing. The service
// re-reads timer state in its own transaction, so a prompt that already
// fired, or a timer that stopped meanwhile, is a no-op.
func (r *Reaper) SweepDueInterrupts(ctx context.Context) error {
	if r.interrupts == nil {
		return nil
	}
	now := r.now().UTC()
	due, err := r.timers.ListInterruptDueBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("listing interrupt-due timers: %w", err)
	}

	for _, t := range due {
		if _, err := r.interrupts.RequestInterrupt(ctx, t.Identity()); err != nil {
			r.logger.Error("raising overdue check-in prompt", "timer", t.ID, "tenant", t.TenantID, "error", err)
		}
	}
	return nil
}

// SweepMissedAcks finds timers stuck awaiting acknowledgment past the grace
// window and force-closes each: the open entry is closed with source
// auto_stop, the timer row is deleted, and an informational overrun
// placeholder records the unacknowledged tail. Per-timer failures are
// logged and the sweep continues.
func (r *Reaper) SweepMissedAcks(ctx context.Context) error {
	now := r.now().UTC()
	stale, err := r.timers.ListAwaitingAckBefore(ctx, now.Add(-missedAckGrace))
	if err != nil {
		return fmt.Errorf("listing stale timers: %w", err)
	}

	for _, t := range stale {
		if err := r.reapOne(ctx, t.Identity(), t.ID, now); err != nil {
			r.logger.Error("reaping stale timer", "timer", t.ID, "tenant", t.TenantID, "error", err)
		}
	}
	return nil
}

func (r *Reaper) reapOne(ctx context.Context, id domain.Identity, timerID string, now time.Time) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)
		txEntries := repository.NewSQLiteEntryRepo(tx)

		// Re-read: the missed-ack task or a manual stop may have won the
		// race between listing and reaping.
		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if t.ID != timerID || !t.AckOverdue(now, missedAckGrace) {
			return nil
		}

		ackShownAt := *t.AckShownAt
		if _, _, err := closeTimerInTx(ctx, tx, t, now, domain.SourceAutoStop); err != nil {
			return err
		}

		// Informational placeholder for the unacknowledged tail; never
		// counted toward budgets, never blocks timer operations.
		overrunSeconds := int(now.Sub(ackShownAt).Seconds())
		placeholder := &domain.TimeEntry{
			ID:        uuid.New().String(),
			TenantID:  t.TenantID,
			UserID:    t.UserID,
			ProjectID: t.ProjectID,
			StartedAt: ackShownAt,
			StoppedAt: &now,
			Seconds:   &overrunSeconds,
			Source:    domain.SourceOverrun,
			Note:      "auto-closed after missed check-in",
			IsOverrun: true,
			CreatedAt: now,
		}
		return txEntries.Create(ctx, placeholder)
	})
}

// SweepLongRunning nudges users whose timer has been running past the
// long-running threshold without a recent nudge. Independent of budget
// state: this is purely an attention check.
func (r *Reaper) SweepLongRunning(ctx context.Context) error {
	now := r.now().UTC()
	running, err := r.timers.ListRunningSince(ctx, now.Add(-longRunningThreshold))
	if err != nil {
		return fmt.Errorf("listing long-running timers: %w", err)
	}

	for _, t := range running {
		if t.NudgeSentAt != nil && now.Sub(*t.NudgeSentAt) < nudgeResendInterval {
			continue
		}
		if err := r.nudgeOne(ctx, t.Identity(), t.ID, now); err != nil {
			r.logger.Error("nudging long-running timer", "timer", t.ID, "tenant", t.TenantID, "error", err)
		}
	}
	return nil
}

func (r *Reaper) nudgeOne(ctx context.Context, id domain.Identity, timerID string, now time.Time) error {
	var alert *notify.Alert
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if t.ID != timerID || t.AwaitingAck {
			return nil
		}
		if t.NudgeSentAt != nil && now.Sub(*t.NudgeSentAt) < nudgeResendInterval {
			return nil
		}

		sent := now
		t.NudgeSentAt = &sent
		if err := txTimers.Update(ctx, t); err != nil {
			return err
		}

		hours := now.Sub(t.StartedAt).Hours()
		alert = &notify.Alert{
			Identity: id,
			Category: domain.AlertNudge,
			Title:    "Timer still running",
			Body:     fmt.Sprintf("Your timer has been running for %.1f hours. Still working?", hours),
			TimerID:  t.ID,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if alert != nil && r.alerts != nil {
		if _, err := r.alerts.Dispatch(ctx, *alert); err != nil {
			r.logger.Warn("nudge dispatch failed", "timer", timerID, "error", err)
		}
	}
	return nil
}
