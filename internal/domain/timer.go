package domain

import "time"

// RunningTimer is the single active tracking session for a (tenant, user)
// pair. At most one row exists per pair; starting a new timer supersedes any
// existing one. All mutation goes through the timer service's transactional
// operations, never direct patches.
type RunningTimer struct {
	ID              string
	TenantID        string
	UserID          string
	ProjectID       string
	StartedAt       time.Time
	LastHeartbeatAt time.Time

	// Interrupt protocol state.
	AwaitingAck     bool
	AckShownAt      *time.Time
	NextInterruptAt *time.Time

	// Last-sent alert markers, updated when a dispatch is initiated.
	OverrunAlertSentAt  *time.Time
	BudgetWarningSentAt *time.Time
	BudgetWarningKind   WarningType
	NudgeSentAt         *time.Time

	// Optional pomodoro sub-state; PomodoroNone when not in pomodoro mode.
	PomodoroPhase    PomodoroPhase
	PomodoroPhaseEnd *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity returns the owning tenant+user pair.
func (t *RunningTimer) Identity() Identity {
	return Identity{TenantID: t.TenantID, UserID: t.UserID}
}

// ElapsedSeconds returns whole seconds tracked since the timer started.
func (t *RunningTimer) ElapsedSeconds(now time.Time) int {
	s := int(now.Sub(t.StartedAt).Seconds())
	if s < 0 {
		return 0
	}
	return s
}

// AckOverdue reports whether the timer is awaiting acknowledgment and the
// prompt has been showing for at least grace. Guards the race where the user
// acknowledged between a task being scheduled and firing.
func (t *RunningTimer) AckOverdue(now time.Time, grace time.Duration) bool {
	if !t.AwaitingAck || t.AckShownAt == nil {
		return false
	}
	return now.Sub(*t.AckShownAt) >= grace
}
