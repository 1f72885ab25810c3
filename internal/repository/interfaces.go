package repository

import (
	"context"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
)

// TimerView is the running timer joined with project/client display data,
// returned by the read-only getRunningTimer operation.
type TimerView struct {
	Timer       domain.RunningTimer
	ProjectName string
	ClientName  string
	HourlyRate  float64
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Client, error)
}

// ProjectRepo is read-only from the timer core's perspective; Create exists
// for the surrounding CRUD layers and fixtures.
type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error)
	List(ctx context.Context, tenantID string) ([]*domain.Project, error)
}

type TimerRepo interface {
	Create(ctx context.Context, t *domain.RunningTimer) error
	GetByUser(ctx context.Context, id domain.Identity) (*domain.RunningTimer, error)
	GetView(ctx context.Context, id domain.Identity) (*TimerView, error)
	Update(ctx context.Context, t *domain.RunningTimer) error
	Delete(ctx context.Context, timerID string) error

	// ListAwaitingAckBefore returns timers stuck awaiting acknowledgment
	// whose prompt was shown before cutoff, across all tenants.
	ListAwaitingAckBefore(ctx context.Context, cutoff time.Time) ([]*domain.RunningTimer, error)

	// ListRunningSince returns timers started before startedBefore that are
	// not awaiting acknowledgment, across all tenants.
	ListRunningSince(ctx context.Context, startedBefore time.Time) ([]*domain.RunningTimer, error)

	// ListInterruptDueBefore returns timers whose check-in deadline passed
	// at or before cutoff and that are not yet awaiting acknowledgment,
	// across all tenants.
	ListInterruptDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.RunningTimer, error)
}

type EntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.TimeEntry, error)

	// GetOpen returns the user's single open non-overrun entry.
	GetOpen(ctx context.Context, id domain.Identity) (*domain.TimeEntry, error)

	// Close stamps stop time, seconds and source on an open entry.
	Close(ctx context.Context, entryID string, stoppedAt time.Time, seconds int, source domain.EntrySource) error

	// SumClosedSeconds totals closed entry durations for a project,
	// excluding overrun placeholders.
	SumClosedSeconds(ctx context.Context, tenantID, projectID string) (int, error)

	ListByUser(ctx context.Context, id domain.Identity, limit int) ([]*domain.TimeEntry, error)
}

type PrefsRepo interface {
	// GetOrDefault returns the user's preferences, lazily inserting the
	// default row on first access.
	GetOrDefault(ctx context.Context, id domain.Identity, now time.Time) (*domain.NotificationPreferences, error)
	Upsert(ctx context.Context, p *domain.NotificationPreferences) error
}

type SubscriptionRepo interface {
	Create(ctx context.Context, s *domain.PushSubscription) error
	ListActive(ctx context.Context, id domain.Identity) ([]*domain.PushSubscription, error)
	Deactivate(ctx context.Context, subID string) error
	TouchLastUsed(ctx context.Context, subID string, at time.Time) error
}
