// Package budget computes budget warning/overrun state for a project from
// accumulated tracked time. Pure computation, no I/O; the timer service owns
// when to evaluate and whether to dispatch.
package budget

import (
	"github.com/tempora-app/tempora/internal/domain"
)

// OutcomeKind is the evaluator's top-level verdict.
type OutcomeKind string

const (
	OutcomeNone    OutcomeKind = "none"
	OutcomeWarning OutcomeKind = "warning"
	OutcomeOverrun OutcomeKind = "overrun"
)

// Thresholds are the user's warning preferences consumed by the evaluator.
type Thresholds struct {
	WarningsEnabled bool
	HoursRemaining  float64 // warn when remaining hours <= this
	AmountRemaining float64 // warn when remaining amount <= this
}

// ThresholdsFrom extracts evaluator thresholds from notification preferences.
func ThresholdsFrom(p *domain.NotificationPreferences) Thresholds {
	return Thresholds{
		WarningsEnabled: p.WarningsEnabled,
		HoursRemaining:  p.WarnThresholdHours,
		AmountRemaining: p.WarnThresholdAmount,
	}
}

// Outcome is the evaluator's full result. Warning is only meaningful when
// Kind == OutcomeWarning.
type Outcome struct {
	Kind    OutcomeKind
	Warning domain.WarningType

	TotalSeconds     int
	TotalAmount      float64
	RemainingSeconds int
	RemainingAmount  float64
}

// Evaluate applies the budget decision table: prior closed seconds for the
// project (overrun placeholders excluded) plus the running timer's elapsed
// seconds, against the project's hours or amount budget.
func Evaluate(p *domain.Project, priorClosedSeconds, runningSeconds int, th Thresholds) Outcome {
	total := priorClosedSeconds + runningSeconds
	amount := float64(total) / 3600 * p.HourlyRate

	out := Outcome{Kind: OutcomeNone, TotalSeconds: total, TotalAmount: amount}
	if !p.HasBudget() {
		return out
	}

	switch p.BudgetType {
	case domain.BudgetHours:
		budgetSeconds := int(*p.BudgetValue * 3600)
		remaining := budgetSeconds - total
		out.RemainingSeconds = remaining
		if remaining <= 0 {
			out.Kind = OutcomeOverrun
			return out
		}
		if th.WarningsEnabled && float64(remaining)/3600 <= th.HoursRemaining {
			out.Kind = OutcomeWarning
			out.Warning = domain.WarningTime
		}

	case domain.BudgetAmount:
		remaining := *p.BudgetValue - amount
		out.RemainingAmount = remaining
		if remaining <= 0 {
			out.Kind = OutcomeOverrun
			return out
		}
		if th.WarningsEnabled && remaining <= th.AmountRemaining {
			out.Kind = OutcomeWarning
			out.Warning = domain.WarningAmount
		}
	}

	return out
}
