package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
)

// Dispatcher sends the primary push notification to all of a user's active
// endpoints and hands off to the fallback channels when push is disabled,
// unsubscribed, or fails everywhere. A successful push still schedules a
// deferred escalation check when fallback channels exist.
type Dispatcher struct {
	prefs     repository.PrefsRepo
	subs      repository.SubscriptionRepo
	push      PushTransport
	fallback  *FallbackDispatcher
	scheduler schedule.Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher wires the primary dispatch pipeline.
func NewDispatcher(
	prefs repository.PrefsRepo,
	subs repository.SubscriptionRepo,
	push PushTransport,
	fallback *FallbackDispatcher,
	scheduler schedule.Scheduler,
	logger *slog.Logger,
	now func() time.Time,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		prefs:     prefs,
		subs:      subs,
		push:      push,
		fallback:  fallback,
		scheduler: scheduler,
		logger:    logger,
		now:       now,
	}
}

// Dispatch runs the full delivery decision. The returned error covers only
// infrastructure failures (loading preferences/subscriptions); delivery
// failures degrade to statuses, never errors.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) (Result, error) {
	now := d.now()

	prefs, err := d.prefs.GetOrDefault(ctx, alert.Identity, now.UTC())
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("loading notification preferences: %w", err)
	}

	subs, err := d.subs.ListActive(ctx, alert.Identity)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("loading push subscriptions: %w", err)
	}

	// Push unavailable entirely: fall back immediately if possible. The
	// deferred re-check is still armed so a failed or ignored fallback gets
	// one relevance-gated retry.
	if !prefs.PushEnabled || len(subs) == 0 {
		status := StatusDisabled
		if prefs.PushEnabled {
			status = StatusNoSubscriptions
		}
		res := Result{Status: status}
		if prefs.HasFallbackChannel() {
			res.FallbackStatus = d.fallback.Send(ctx, prefs, alert)
			d.armEscalation(ctx, prefs, alert)
		}
		return res, nil
	}

	// Quiet hours suppress push and, for this call, fallback too.
	if prefs.QuietHours.Contains(now) {
		return Result{Status: StatusQuietHours}, nil
	}

	payload, err := alert.Payload()
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("encoding push payload: %w", err)
	}

	delivered := d.sendToEndpoints(ctx, subs, payload, alert)

	if delivered == 0 {
		res := Result{Status: StatusPushFailed}
		if prefs.HasFallbackChannel() {
			res.FallbackStatus = d.fallback.Send(ctx, prefs, alert)
			d.armEscalation(ctx, prefs, alert)
		}
		return res, nil
	}

	// Delivered somewhere: arm the delayed escalation re-check.
	d.armEscalation(ctx, prefs, alert)

	return Result{Status: StatusSent, Delivered: delivered}, nil
}

// armEscalation schedules the single-shot deferred re-check on the fallback
// channels. Do-not-disturb users opted out of repeated contact; every other
// condition (ack arrived, timer gone, channels removed) is re-validated by
// the escalator at fire time, so arming is cheap to do on every dispatch
// path that reached a fallback-capable user.
func (d *Dispatcher) armEscalation(ctx context.Context, prefs *domain.NotificationPreferences, alert Alert) {
	if !prefs.HasFallbackChannel() || prefs.DoNotDisturb {
		return
	}
	p := schedule.Payload{
		Identity:      alert.Identity,
		TimerID:       alert.TimerID,
		AlertCategory: alert.Category,
		AlertTitle:    alert.Title,
		AlertBody:     alert.Body,
	}
	if err := d.scheduler.RunAfter(ctx, prefs.EscalationDelay(), schedule.TaskEscalationCheck, p); err != nil {
		// Fire-and-forget: scheduling failure never fails the dispatch.
		d.logger.Error("scheduling escalation check", "user", alert.Identity.UserID, "error", err)
	}
}

// sendToEndpoints attempts delivery to every endpoint concurrently. A
// permanent failure deactivates the endpoint; a transient failure is logged
// and the endpoint stays active. Successful deliveries stamp last_used_at.
func (d *Dispatcher) sendToEndpoints(ctx context.Context, subs []*domain.PushSubscription, payload []byte, alert Alert) int {
	now := d.now().UTC()

	var wg sync.WaitGroup
	errs := make([]error, len(subs))
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *domain.PushSubscription) {
			defer wg.Done()
			errs[i] = d.push.Send(ctx, sub, payload)
		}(i, sub)
	}
	wg.Wait()

	delivered := 0
	for i, err := range errs {
		sub := subs[i]
		switch {
		case err == nil:
			delivered++
			if touchErr := d.subs.TouchLastUsed(ctx, sub.ID, now); touchErr != nil {
				d.logger.Warn("stamping subscription last_used_at", "subscription", sub.ID, "error", touchErr)
			}
		case errors.Is(err, ErrEndpointGone):
			d.logger.Info("deactivating gone push endpoint",
				"subscription", sub.ID, "user", alert.Identity.UserID)
			if deactErr := d.subs.Deactivate(ctx, sub.ID); deactErr != nil {
				d.logger.Error("deactivating push subscription", "subscription", sub.ID, "error", deactErr)
			}
		default:
			d.logger.Warn("push delivery failed",
				"subscription", sub.ID,
				"category", string(alert.Category),
				"error", err,
			)
		}
	}
	return delivered
}
