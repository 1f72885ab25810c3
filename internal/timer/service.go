package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/budget"
	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/notify"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
)

const (
	// missedAckGrace is how long an interrupt prompt may sit unacknowledged
	// before the deferred autostop may force-close the timer.
	missedAckGrace = 60 * time.Second

	// pomodoroFocusLength is the focus phase recorded when a timer starts
	// in pomodoro mode.
	pomodoroFocusLength = 25 * time.Minute
)

type service struct {
	timers    repository.TimerRepo
	uow       db.UnitOfWork
	scheduler schedule.Scheduler
	alerts    AlertSender
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates the timer state machine. timers is used for read-only
// paths; all mutations build tx-scoped repositories inside the unit of work.
func NewService(
	timers repository.TimerRepo,
	uow db.UnitOfWork,
	scheduler schedule.Scheduler,
	alerts AlertSender,
	logger *slog.Logger,
	now func() time.Time,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		timers:    timers,
		uow:       uow,
		scheduler: scheduler,
		alerts:    alerts,
		logger:    logger,
		now:       now,
	}
}

func (s *service) Start(ctx context.Context, id domain.Identity, projectID string, opts StartOptions) (*StartResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()

	var res StartResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)
		txEntries := repository.NewSQLiteEntryRepo(tx)
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txPrefs := repository.NewSQLitePrefsRepo(tx)

		project, err := txProjects.GetByID(ctx, id.TenantID, projectID)
		if err != nil {
			return err
		}

		// Start always supersedes: an existing timer is stopped first,
		// never rejected.
		existing, err := txTimers.GetByUser(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err == nil {
			if _, _, err := closeTimerInTx(ctx, tx, existing, now, domain.SourceTimer); err != nil {
				return err
			}
			res.Superseded = true
		}

		prefs, err := txPrefs.GetOrDefault(ctx, id, now)
		if err != nil {
			return err
		}

		t := &domain.RunningTimer{
			ID:              uuid.New().String(),
			TenantID:        id.TenantID,
			UserID:          id.UserID,
			ProjectID:       project.ID,
			StartedAt:       now,
			LastHeartbeatAt: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if prefs.InterruptEnabled {
			deadline := now.Add(prefs.InterruptInterval())
			t.NextInterruptAt = &deadline
		}
		if opts.Pomodoro {
			t.PomodoroPhase = domain.PomodoroFocus
			phaseEnd := now.Add(pomodoroFocusLength)
			t.PomodoroPhaseEnd = &phaseEnd
		}
		if err := txTimers.Create(ctx, t); err != nil {
			return err
		}

		entry := &domain.TimeEntry{
			ID:        uuid.New().String(),
			TenantID:  id.TenantID,
			UserID:    id.UserID,
			ProjectID: project.ID,
			StartedAt: now,
			Source:    domain.SourceTimer,
			Note:      opts.Note,
			CreatedAt: now,
		}
		if err := txEntries.Create(ctx, entry); err != nil {
			return err
		}

		res.TimerID = t.ID
		res.EntryID = entry.ID
		res.ProjectName = project.Name
		res.StartedAt = now
		res.NextInterruptAt = t.NextInterruptAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.NextInterruptAt != nil {
		p := schedule.Payload{Identity: id, TimerID: res.TimerID}
		if err := s.scheduler.RunAt(ctx, *res.NextInterruptAt, schedule.TaskInterruptCheck, p); err != nil {
			// Fire-and-forget: the committed start stands regardless.
			s.logger.Error("scheduling interrupt check", "timer", res.TimerID, "error", err)
		}
	}
	return &res, nil
}

func (s *service) Stop(ctx context.Context, id domain.Identity, source domain.EntrySource) (*StopResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	if source == "" {
		source = domain.SourceTimer
	}
	now := s.now().UTC()

	var res StopResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			// Idempotent: nothing running is a non-error outcome.
			return nil
		}
		if err != nil {
			return err
		}

		entryID, seconds, err := closeTimerInTx(ctx, tx, t, now, source)
		if err != nil {
			return err
		}
		res = StopResult{Stopped: true, EntryID: entryID, Seconds: seconds}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) Heartbeat(ctx context.Context, id domain.Identity) (*HeartbeatResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()

	var res HeartbeatResult
	var alert *notify.Alert
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)
		txEntries := repository.NewSQLiteEntryRepo(tx)
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txPrefs := repository.NewSQLitePrefsRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res.Active = true
		t.LastHeartbeatAt = now

		// Heartbeat is the cheap natural point to re-check the budget.
		project, err := txProjects.GetByID(ctx, id.TenantID, t.ProjectID)
		if err != nil {
			return err
		}
		prefs, err := txPrefs.GetOrDefault(ctx, id, now)
		if err != nil {
			return err
		}
		prior, err := txEntries.SumClosedSeconds(ctx, id.TenantID, t.ProjectID)
		if err != nil {
			return err
		}

		out := budget.Evaluate(project, prior, t.ElapsedSeconds(now), budget.ThresholdsFrom(prefs))
		res.BudgetOutcome = out

		if out.Kind != budget.OutcomeNone && budget.ShouldResend(t, out, now) {
			// Markers persist with the heartbeat even if delivery later
			// fails; a stuck channel must not resend every heartbeat.
			budget.ApplyMarkers(t, out, now)
			a := budgetAlert(id, t.ID, project, out)
			alert = &a
		}

		return txTimers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if alert != nil {
		res.AlertSent = true
		s.dispatch(ctx, *alert)
	}
	return &res, nil
}

func (s *service) RequestInterrupt(ctx context.Context, id domain.Identity) (*InterruptResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()

	var res InterruptResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res = InterruptResult{ShouldShowInterrupt: true, TimerID: t.ID}
		if t.AwaitingAck {
			// Duplicate delivery: keep the original prompt timestamp so the
			// autostop window is not extended.
			return nil
		}

		t.AwaitingAck = true
		shown := now
		t.AckShownAt = &shown
		return txTimers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if res.ShouldShowInterrupt {
		p := schedule.Payload{Identity: id, TimerID: res.TimerID}
		if err := s.scheduler.RunAfter(ctx, missedAckGrace, schedule.TaskMissedAckAutoStop, p); err != nil {
			s.logger.Error("scheduling missed-ack autostop", "timer", res.TimerID, "error", err)
		}
	}
	return &res, nil
}

func (s *service) AckInterrupt(ctx context.Context, id domain.Identity, keepWorking bool) (*AckResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()

	res := AckResult{Action: AckAlreadyHandled}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)
		txPrefs := repository.NewSQLitePrefsRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !t.AwaitingAck {
			return nil
		}

		if !keepWorking {
			_, seconds, err := closeTimerInTx(ctx, tx, t, now, domain.SourceTimer)
			if err != nil {
				return err
			}
			res = AckResult{Action: AckStopped, Seconds: seconds}
			return nil
		}

		t.AwaitingAck = false
		t.AckShownAt = nil
		prefs, err := txPrefs.GetOrDefault(ctx, id, now)
		if err != nil {
			return err
		}
		if prefs.InterruptEnabled {
			deadline := now.Add(prefs.InterruptInterval())
			t.NextInterruptAt = &deadline
		} else {
			t.NextInterruptAt = nil
		}
		if err := txTimers.Update(ctx, t); err != nil {
			return err
		}
		res = AckResult{Action: AckContinued, NextInterruptAt: t.NextInterruptAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Action == AckContinued && res.NextInterruptAt != nil:
		p := schedule.Payload{Identity: id}
		if err := s.scheduler.RunAt(ctx, *res.NextInterruptAt, schedule.TaskInterruptCheck, p); err != nil {
			s.logger.Error("scheduling interrupt check", "user", id.UserID, "error", err)
		}
	case res.Action == AckStopped:
		s.dispatch(ctx, notify.Alert{
			Identity: id,
			Category: domain.AlertBreakReminder,
			Title:    "Timer stopped",
			Body:     "Good call. Take a real break before the next session.",
		})
	}
	return &res, nil
}

func (s *service) AutoStopForMissedAck(ctx context.Context, id domain.Identity, timerID string) (*AutoStopResult, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	now := s.now().UTC()

	var res AutoStopResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimers := repository.NewSQLiteTimerRepo(tx)

		t, err := txTimers.GetByUser(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			res.Reason = "no_timer"
			return nil
		}
		if err != nil {
			return err
		}
		if timerID != "" && t.ID != timerID {
			res.Reason = "superseded"
			return nil
		}
		if !t.AwaitingAck || t.AckShownAt == nil {
			res.Reason = "already_acked"
			return nil
		}
		if !t.AckOverdue(now, missedAckGrace) {
			res.Reason = "too_early"
			return nil
		}

		if _, _, err := closeTimerInTx(ctx, tx, t, now, domain.SourceAutoStop); err != nil {
			return err
		}
		res.Stopped = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) GetRunningTimer(ctx context.Context, id domain.Identity) (*repository.TimerView, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	return s.timers.GetView(ctx, id)
}

// closeTimerInTx closes the open time entry (if any) and deletes the timer
// row. Must run inside the same transaction that read the timer.
func closeTimerInTx(ctx context.Context, tx db.DBTX, t *domain.RunningTimer, stoppedAt time.Time, source domain.EntrySource) (entryID string, seconds int, err error) {
	txEntries := repository.NewSQLiteEntryRepo(tx)
	txTimers := repository.NewSQLiteTimerRepo(tx)

	open, err := txEntries.GetOpen(ctx, t.Identity())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", 0, err
	}
	if err == nil {
		seconds = int(stoppedAt.Sub(open.StartedAt).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		if err := txEntries.Close(ctx, open.ID, stoppedAt, seconds, source); err != nil {
			return "", 0, err
		}
		entryID = open.ID
	}

	if err := txTimers.Delete(ctx, t.ID); err != nil {
		return "", 0, err
	}
	return entryID, seconds, nil
}

// dispatch sends an alert, degrading any failure to a log line. Timer
// operations never fail because a notification could not be delivered.
func (s *service) dispatch(ctx context.Context, alert notify.Alert) {
	if s.alerts == nil {
		return
	}
	if _, err := s.alerts.Dispatch(ctx, alert); err != nil {
		s.logger.Warn("alert dispatch failed",
			"category", string(alert.Category),
			"user", alert.Identity.UserID,
			"error", err,
		)
	}
}

func budgetAlert(id domain.Identity, timerID string, p *domain.Project, out budget.Outcome) notify.Alert {
	if out.Kind == budget.OutcomeOverrun {
		return notify.Alert{
			Identity: id,
			Category: domain.AlertOverrun,
			Title:    fmt.Sprintf("%s is over budget", p.Name),
			Body:     fmt.Sprintf("Tracked %.1fh so far. The project budget is exhausted.", float64(out.TotalSeconds)/3600),
			TimerID:  timerID,
		}
	}

	var body string
	if out.Warning == domain.WarningTime {
		body = fmt.Sprintf("About %.1fh left on the project budget.", float64(out.RemainingSeconds)/3600)
	} else {
		body = fmt.Sprintf("About %.2f left on the project budget.", out.RemainingAmount)
	}
	return notify.Alert{
		Identity: id,
		Category: domain.AlertBudgetWarning,
		Title:    fmt.Sprintf("%s is close to its budget", p.Name),
		Body:     body,
		TimerID:  timerID,
	}
}
