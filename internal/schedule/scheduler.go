package schedule

import (
	"context"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
)

// Task identifies a deferred task body. Task bodies are idempotent and
// self-validating: they re-read current state before acting, so a stale or
// duplicated firing becomes a no-op. There are no cancellation handles.
type Task string

const (
	TaskInterruptCheck    Task = "interrupt_check"
	TaskMissedAckAutoStop Task = "missed_ack_autostop"
	TaskEscalationCheck   Task = "escalation_check"
)

// Payload carries the context a deferred task needs to re-validate itself.
// Alert fields are only set for escalation checks.
type Payload struct {
	Identity domain.Identity
	TimerID  string

	AlertCategory domain.AlertCategory
	AlertTitle    string
	AlertBody     string
}

// Scheduler enqueues deferred tasks by wall-clock deadline. Delivery is
// at-least-once; scheduling is fire-and-forget from the caller's side, and
// a scheduling failure never rolls back the state change that triggered it.
type Scheduler interface {
	RunAt(ctx context.Context, at time.Time, task Task, p Payload) error
	RunAfter(ctx context.Context, delay time.Duration, task Task, p Payload) error
}
