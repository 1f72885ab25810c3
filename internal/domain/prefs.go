package domain

import "time"

// Default preference values applied when a row is lazily created.
const (
	DefaultInterruptIntervalMin = 60
	DefaultEscalationDelayMin   = 2
	DefaultWarnThresholdHours   = 0.5
	DefaultWarnThresholdAmount  = 50
)

// QuietHours is a local time-of-day window in which notifications are
// suppressed. Start and End are minutes since midnight; a window with
// Start > End wraps past midnight (e.g. 22:00-06:00).
type QuietHours struct {
	StartMin *int
	EndMin   *int
}

// Configured reports whether a window is set at all.
func (q QuietHours) Configured() bool {
	return q.StartMin != nil && q.EndMin != nil
}

// Contains reports whether the local time-of-day of t falls inside the
// window. The start is inclusive, the end exclusive.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Configured() {
		return false
	}
	start, end := *q.StartMin, *q.EndMin
	min := t.Hour()*60 + t.Minute()
	if start == end {
		return false
	}
	if start < end {
		return min >= start && min < end
	}
	// Overnight wrap.
	return min >= start || min < end
}

// NotificationPreferences controls how a user is alerted. Read-mostly;
// created lazily with defaults on first access.
type NotificationPreferences struct {
	TenantID string
	UserID   string

	PushEnabled  bool
	EmailEnabled bool
	SMSEnabled   bool
	ChatEnabled  bool

	EmailAddress   string
	PhoneNumber    string
	ChatWebhookURL string

	QuietHours         QuietHours
	EscalationDelayMin int
	DoNotDisturb       bool

	// Budget warning thresholds consumed by the evaluator's caller.
	WarningsEnabled     bool
	WarnThresholdHours  float64
	WarnThresholdAmount float64

	// Interrupt protocol settings.
	InterruptEnabled     bool
	InterruptIntervalMin int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPreferences returns the row created on first access for a user.
func DefaultPreferences(id Identity, now time.Time) *NotificationPreferences {
	return &NotificationPreferences{
		TenantID:             id.TenantID,
		UserID:               id.UserID,
		PushEnabled:          true,
		EscalationDelayMin:   DefaultEscalationDelayMin,
		WarningsEnabled:      true,
		WarnThresholdHours:   DefaultWarnThresholdHours,
		WarnThresholdAmount:  DefaultWarnThresholdAmount,
		InterruptEnabled:     true,
		InterruptIntervalMin: DefaultInterruptIntervalMin,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// HasFallbackChannel reports whether at least one secondary channel is both
// enabled and addressable.
func (p *NotificationPreferences) HasFallbackChannel() bool {
	if p.EmailEnabled && p.EmailAddress != "" {
		return true
	}
	if p.SMSEnabled && p.PhoneNumber != "" {
		return true
	}
	if p.ChatEnabled && p.ChatWebhookURL != "" {
		return true
	}
	return false
}

// EscalationDelay returns the configured escalation delay, falling back to
// the default when unset.
func (p *NotificationPreferences) EscalationDelay() time.Duration {
	if p.EscalationDelayMin <= 0 {
		return DefaultEscalationDelayMin * time.Minute
	}
	return time.Duration(p.EscalationDelayMin) * time.Minute
}

// InterruptInterval returns the configured interrupt cadence, falling back
// to the default when unset.
func (p *NotificationPreferences) InterruptInterval() time.Duration {
	if p.InterruptIntervalMin <= 0 {
		return DefaultInterruptIntervalMin * time.Minute
	}
	return time.Duration(p.InterruptIntervalMin) * time.Minute
}
