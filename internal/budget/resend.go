package budget

import (
	"time"

	"github.com/tempora-app/tempora/internal/domain"
)

// Resend throttles. Fixed values; nothing in the product has needed these
// to be tunable.
const (
	// OverrunResendInterval is the minimum gap between overrun alerts.
	OverrunResendInterval = 60 * time.Minute

	// WarningResendInterval is the minimum gap between warnings of the same
	// type. A changed warning type resends immediately.
	WarningResendInterval = 30 * time.Minute
)

// ShouldResend decides whether the outcome warrants a fresh alert given the
// last-sent markers on the running timer. The policy is caller-enforced:
// markers are persisted when dispatch is initiated, even if delivery later
// fails, so a stuck channel cannot cause a resend storm on every heartbeat.
func ShouldResend(t *domain.RunningTimer, out Outcome, now time.Time) bool {
	switch out.Kind {
	case OutcomeOverrun:
		return t.OverrunAlertSentAt == nil ||
			now.Sub(*t.OverrunAlertSentAt) >= OverrunResendInterval
	case OutcomeWarning:
		if t.BudgetWarningSentAt == nil {
			return true
		}
		if t.BudgetWarningKind != out.Warning {
			return true
		}
		return now.Sub(*t.BudgetWarningSentAt) >= WarningResendInterval
	default:
		return false
	}
}

// ApplyMarkers stamps the appropriate last-sent marker on the timer for an
// alert being dispatched now.
func ApplyMarkers(t *domain.RunningTimer, out Outcome, now time.Time) {
	switch out.Kind {
	case OutcomeOverrun:
		sent := now
		t.OverrunAlertSentAt = &sent
	case OutcomeWarning:
		sent := now
		t.BudgetWarningSentAt = &sent
		t.BudgetWarningKind = out.Warning
	}
}
