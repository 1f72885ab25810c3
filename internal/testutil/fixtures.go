package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/domain"
)

// TestIdentity returns a fixed tenant+user pair for tests.
func TestIdentity() domain.Identity {
	return domain.Identity{TenantID: "tenant-1", UserID: "user-1"}
}

// ProjectOption customizes a test project.
type ProjectOption func(*domain.Project)

// WithHourlyRate sets the project's hourly rate.
func WithHourlyRate(rate float64) ProjectOption {
	return func(p *domain.Project) { p.HourlyRate = rate }
}

// WithHoursBudget configures an hours budget.
func WithHoursBudget(hours float64) ProjectOption {
	return func(p *domain.Project) {
		p.BudgetType = domain.BudgetHours
		p.BudgetValue = &hours
	}
}

// WithAmountBudget configures an amount budget.
func WithAmountBudget(amount float64) ProjectOption {
	return func(p *domain.Project) {
		p.BudgetType = domain.BudgetAmount
		p.BudgetValue = &amount
	}
}

// WithClient links the project to a client.
func WithClient(clientID string) ProjectOption {
	return func(p *domain.Project) { p.ClientID = clientID }
}

// NewTestProject creates a project fixture for the given tenant.
func NewTestProject(tenantID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Name:       name,
		BudgetType: domain.BudgetNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTestClient creates a client fixture.
func NewTestClient(tenantID, name string) *domain.Client {
	return &domain.Client{ID: uuid.New().String(), TenantID: tenantID, Name: name}
}

// TimerOption customizes a test running timer.
type TimerOption func(*domain.RunningTimer)

// WithStartedAt backdates the timer's start.
func WithStartedAt(t time.Time) TimerOption {
	return func(rt *domain.RunningTimer) {
		rt.StartedAt = t
		rt.LastHeartbeatAt = t
	}
}

// WithAwaitingAck puts the timer in the awaiting-acknowledgment state.
func WithAwaitingAck(shownAt time.Time) TimerOption {
	return func(rt *domain.RunningTimer) {
		rt.AwaitingAck = true
		rt.AckShownAt = &shownAt
	}
}

// WithNudgeSentAt stamps the still-running nudge marker.
func WithNudgeSentAt(t time.Time) TimerOption {
	return func(rt *domain.RunningTimer) { rt.NudgeSentAt = &t }
}

// WithNextInterruptAt sets the check-in deadline.
func WithNextInterruptAt(t time.Time) TimerOption {
	return func(rt *domain.RunningTimer) { rt.NextInterruptAt = &t }
}

// NewTestTimer creates a running-timer fixture.
func NewTestTimer(id domain.Identity, projectID string, opts ...TimerOption) *domain.RunningTimer {
	now := time.Now().UTC()
	rt := &domain.RunningTimer{
		ID:              uuid.New().String(),
		TenantID:        id.TenantID,
		UserID:          id.UserID,
		ProjectID:       projectID,
		StartedAt:       now,
		LastHeartbeatAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// EntryOption customizes a test time entry.
type EntryOption func(*domain.TimeEntry)

// EntryStartedAt backdates the entry's start.
func EntryStartedAt(t time.Time) EntryOption {
	return func(e *domain.TimeEntry) { e.StartedAt = t }
}

// Closed closes the entry with the given duration.
func Closed(seconds int, source domain.EntrySource) EntryOption {
	return func(e *domain.TimeEntry) {
		stopped := e.StartedAt.Add(time.Duration(seconds) * time.Second)
		e.StoppedAt = &stopped
		e.Seconds = &seconds
		e.Source = source
	}
}

// AsOverrunPlaceholder marks the entry as an informational overrun placeholder.
func AsOverrunPlaceholder() EntryOption {
	return func(e *domain.TimeEntry) {
		e.IsOverrun = true
		e.Source = domain.SourceOverrun
	}
}

// NewTestEntry creates a time-entry fixture, open by default.
func NewTestEntry(id domain.Identity, projectID string, opts ...EntryOption) *domain.TimeEntry {
	now := time.Now().UTC()
	e := &domain.TimeEntry{
		ID:        uuid.New().String(),
		TenantID:  id.TenantID,
		UserID:    id.UserID,
		ProjectID: projectID,
		StartedAt: now,
		Source:    domain.SourceTimer,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTestSubscription creates an active push-subscription fixture.
func NewTestSubscription(id domain.Identity, endpoint string) *domain.PushSubscription {
	return &domain.PushSubscription{
		ID:        uuid.New().String(),
		TenantID:  id.TenantID,
		UserID:    id.UserID,
		Endpoint:  endpoint,
		P256dhKey: "p256dh-key",
		AuthKey:   "auth-key",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}
