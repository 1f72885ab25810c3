package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tempora-app/tempora/internal/domain"
)

// FallbackDispatcher delivers an alert over the user's enabled secondary
// channels. Channels are attempted concurrently and independently: one
// channel's failure never blocks the others, and any single success makes
// the overall result "sent".
type FallbackDispatcher struct {
	email  EmailTransport
	sms    SMSTransport
	chat   ChatTransport
	logger *slog.Logger
}

// NewFallbackDispatcher wires the secondary channel transports. Any
// transport may be nil when the deployment has no credentials for it.
func NewFallbackDispatcher(email EmailTransport, sms SMSTransport, chat ChatTransport, logger *slog.Logger) *FallbackDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackDispatcher{email: email, sms: sms, chat: chat, logger: logger}
}

type channelAttempt struct {
	name string
	send func(ctx context.Context) error
}

// Send fans the alert out to every enabled, configured channel. Returns
// StatusNoChannels without error when nothing is usable, StatusSent when at
// least one channel succeeded, StatusFailed otherwise.
func (d *FallbackDispatcher) Send(ctx context.Context, prefs *domain.NotificationPreferences, alert Alert) Status {
	var attempts []channelAttempt

	if prefs.EmailEnabled && prefs.EmailAddress != "" && d.email != nil {
		to := prefs.EmailAddress
		attempts = append(attempts, channelAttempt{"email", func(ctx context.Context) error {
			return d.email.Send(ctx, to, alert.Title, alert.Body)
		}})
	}
	if prefs.SMSEnabled && prefs.PhoneNumber != "" && d.sms != nil {
		to := prefs.PhoneNumber
		attempts = append(attempts, channelAttempt{"sms", func(ctx context.Context) error {
			return d.sms.Send(ctx, to, alert.Title+": "+alert.Body)
		}})
	}
	if prefs.ChatEnabled && prefs.ChatWebhookURL != "" && d.chat != nil {
		url := prefs.ChatWebhookURL
		attempts = append(attempts, channelAttempt{"chat", func(ctx context.Context) error {
			return d.chat.Send(ctx, url, alert)
		}})
	}

	if len(attempts) == 0 {
		return StatusNoChannels
	}

	var wg sync.WaitGroup
	results := make([]error, len(attempts))
	for i, attempt := range attempts {
		wg.Add(1)
		go func(i int, attempt channelAttempt) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = fmt.Errorf("channel %s panicked: %v", attempt.name, r)
				}
			}()
			results[i] = attempt.send(ctx)
		}(i, attempt)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		if err != nil {
			d.logger.Warn("fallback channel failed",
				"channel", attempts[i].name,
				"category", string(alert.Category),
				"user", alert.Identity.UserID,
				"error", err,
			)
			continue
		}
		succeeded++
	}

	if succeeded > 0 {
		return StatusSent
	}
	return StatusFailed
}
