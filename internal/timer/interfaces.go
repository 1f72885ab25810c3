package timer

import (
	"context"
	"time"

	"github.com/tempora-app/tempora/internal/budget"
	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/notify"
	"github.com/tempora-app/tempora/internal/repository"
)

// AlertSender is the slice of the notification dispatcher the timer core
// uses. Dispatch failures degrade to "alert not sent"; they never fail the
// timer operation that triggered them.
type AlertSender interface {
	Dispatch(ctx context.Context, alert notify.Alert) (notify.Result, error)
}

// StartOptions carries optional behavior for Start.
type StartOptions struct {
	Pomodoro bool
	Note     string
}

// StartResult reports a successful start.
type StartResult struct {
	TimerID         string
	EntryID         string
	ProjectName     string
	StartedAt       time.Time
	NextInterruptAt *time.Time

	// Superseded is set when an existing timer was stopped to make room.
	Superseded bool
}

// StopResult reports a stop. Stopped is false when there was nothing to do;
// that is a success, not an error.
type StopResult struct {
	Stopped bool
	EntryID string
	Seconds int
}

// HeartbeatResult reports a heartbeat and the budget outcome it computed.
type HeartbeatResult struct {
	Active        bool
	BudgetOutcome budget.Outcome
	AlertSent     bool
}

// InterruptResult tells the caller whether to prompt the user.
type InterruptResult struct {
	ShouldShowInterrupt bool
	TimerID             string
}

// AckAction describes what an acknowledgment did.
type AckAction string

const (
	AckAlreadyHandled AckAction = "already_acked"
	AckContinued      AckAction = "continued"
	AckStopped        AckAction = "stopped"
)

// AckResult reports an interrupt acknowledgment.
type AckResult struct {
	Action          AckAction
	NextInterruptAt *time.Time
	Seconds         int
}

// AutoStopResult reports a missed-ack autostop attempt.
type AutoStopResult struct {
	Stopped bool
	Reason  string // set when Stopped is false: no_timer, superseded, already_acked, too_early
}

// Service is the timer state machine: the single-active-timer lifecycle per
// (tenant, user) plus the interrupt/acknowledgment protocol. Every mutation
// runs in its own transaction and re-reads current state before writing, so
// concurrent callers and stale deferred tasks converge to no-ops.
type Service interface {
	Start(ctx context.Context, id domain.Identity, projectID string, opts StartOptions) (*StartResult, error)
	Stop(ctx context.Context, id domain.Identity, source domain.EntrySource) (*StopResult, error)
	Heartbeat(ctx context.Context, id domain.Identity) (*HeartbeatResult, error)
	RequestInterrupt(ctx context.Context, id domain.Identity) (*InterruptResult, error)
	AckInterrupt(ctx context.Context, id domain.Identity, keepWorking bool) (*AckResult, error)
	AutoStopForMissedAck(ctx context.Context, id domain.Identity, timerID string) (*AutoStopResult, error)
	GetRunningTimer(ctx context.Context, id domain.Identity) (*repository.TimerView, error)
}
