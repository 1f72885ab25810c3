package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
)

// TimerReader is the slice of TimerRepo the escalation relevance check needs.
type TimerReader interface {
	GetByUser(ctx context.Context, id domain.Identity) (*domain.RunningTimer, error)
}

// Escalator is the deferred escalation-check task body. It re-loads
// preferences and re-validates the alert's relevance against current timer
// state before re-firing the fallback channels; the world may have moved on
// since the original dispatch.
type Escalator struct {
	prefs    repository.PrefsRepo
	timers   TimerReader
	fallback *FallbackDispatcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewEscalator wires the escalation check.
func NewEscalator(prefs repository.PrefsRepo, timers TimerReader, fallback *FallbackDispatcher, logger *slog.Logger, now func() time.Time) *Escalator {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Escalator{prefs: prefs, timers: timers, fallback: fallback, logger: logger, now: now}
}

// Check runs the escalation decision for a previously dispatched alert.
func (e *Escalator) Check(ctx context.Context, p schedule.Payload) (Status, error) {
	prefs, err := e.prefs.GetOrDefault(ctx, p.Identity, e.now().UTC())
	if err != nil {
		return StatusFailed, fmt.Errorf("loading notification preferences: %w", err)
	}

	if prefs.DoNotDisturb {
		return StatusDNDEnabled, nil
	}
	if !prefs.HasFallbackChannel() {
		return StatusNoChannels, nil
	}

	// Relevance: an interrupt alert is only worth escalating while the same
	// timer instance is still waiting on the user. A stopped or restarted
	// timer means the moment has passed.
	if p.AlertCategory == domain.AlertInterrupt && p.TimerID != "" {
		timer, err := e.timers.GetByUser(ctx, p.Identity)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return StatusNoLongerRelevant, nil
			}
			return StatusFailed, fmt.Errorf("re-reading running timer: %w", err)
		}
		if timer.ID != p.TimerID || !timer.AwaitingAck {
			return StatusNoLongerRelevant, nil
		}
	}

	alert := Alert{
		Identity: p.Identity,
		Category: p.AlertCategory,
		Title:    p.AlertTitle,
		Body:     p.AlertBody,
		TimerID:  p.TimerID,
	}
	return e.fallback.Send(ctx, prefs, alert), nil
}
