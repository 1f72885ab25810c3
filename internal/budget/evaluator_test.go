package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempora-app/tempora/internal/domain"
)

func hoursProject(budgetHours float64) *domain.Project {
	return &domain.Project{
		ID:          "p1",
		TenantID:    "t1",
		HourlyRate:  100,
		BudgetType:  domain.BudgetHours,
		BudgetValue: &budgetHours,
	}
}

func amountProject(budgetAmount, rate float64) *domain.Project {
	return &domain.Project{
		ID:          "p1",
		TenantID:    "t1",
		HourlyRate:  rate,
		BudgetType:  domain.BudgetAmount,
		BudgetValue: &budgetAmount,
	}
}

func warnAt(hours, amount float64) Thresholds {
	return Thresholds{WarningsEnabled: true, HoursRemaining: hours, AmountRemaining: amount}
}

func secondsOf(hours float64) int {
	return int(hours * 3600)
}

func TestEvaluate_HoursBudgetDecisionTable(t *testing.T) {
	// 2h budget, warn at 0.5h remaining.
	p := hoursProject(2)
	th := warnAt(0.5, 0)

	tests := []struct {
		name        string
		trackedHrs  float64
		wantKind    OutcomeKind
		wantWarning domain.WarningType
	}{
		{"well under budget", 0.9, OutcomeNone, ""},
		{"inside warning band", 1.6, OutcomeWarning, domain.WarningTime},
		{"exactly at budget", 2.0, OutcomeOverrun, ""},
		{"over budget", 2.1, OutcomeOverrun, ""},
		{"exactly at warning boundary", 1.5, OutcomeWarning, domain.WarningTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(p, secondsOf(tt.trackedHrs), 0, th)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantWarning, out.Warning)
		})
	}
}

func TestEvaluate_RunningSecondsCountTowardTotal(t *testing.T) {
	p := hoursProject(2)
	th := warnAt(0.5, 0)

	// 1.0h closed + 0.6h running = 1.6h total, inside the warning band.
	out := Evaluate(p, secondsOf(1.0), secondsOf(0.6), th)
	assert.Equal(t, OutcomeWarning, out.Kind)
	assert.Equal(t, secondsOf(1.6), out.TotalSeconds)
}

func TestEvaluate_AmountBudget(t *testing.T) {
	// 500 budget at 100/h, warn at 50 remaining.
	p := amountProject(500, 100)
	th := warnAt(0, 50)

	under := Evaluate(p, secondsOf(3), 0, th) // 300 spent
	assert.Equal(t, OutcomeNone, under.Kind)

	warning := Evaluate(p, secondsOf(4.6), 0, th) // 460 spent, 40 remaining
	assert.Equal(t, OutcomeWarning, warning.Kind)
	assert.Equal(t, domain.WarningAmount, warning.Warning)

	over := Evaluate(p, secondsOf(5.5), 0, th) // 550 spent
	assert.Equal(t, OutcomeOverrun, over.Kind)
}

func TestEvaluate_WarningsDisabledStillReportsOverrun(t *testing.T) {
	p := hoursProject(2)
	th := Thresholds{WarningsEnabled: false, HoursRemaining: 0.5}

	warning := Evaluate(p, secondsOf(1.6), 0, th)
	assert.Equal(t, OutcomeNone, warning.Kind, "warnings disabled suppresses the warning band")

	over := Evaluate(p, secondsOf(2.5), 0, th)
	assert.Equal(t, OutcomeOverrun, over.Kind, "overrun is not a warning and cannot be disabled")
}

func TestEvaluate_NoBudgetConfigured(t *testing.T) {
	none := &domain.Project{ID: "p1", TenantID: "t1", HourlyRate: 100, BudgetType: domain.BudgetNone}
	out := Evaluate(none, secondsOf(100), 0, warnAt(0.5, 50))
	assert.Equal(t, OutcomeNone, out.Kind)

	zero := float64(0)
	unset := &domain.Project{ID: "p2", TenantID: "t1", BudgetType: domain.BudgetHours, BudgetValue: &zero}
	assert.Equal(t, OutcomeNone, Evaluate(unset, secondsOf(100), 0, warnAt(0.5, 50)).Kind,
		"zero-value budget treated as unconfigured")
}

func TestEvaluate_AmountDerivation(t *testing.T) {
	p := amountProject(1000, 80)
	out := Evaluate(p, secondsOf(2), 0, Thresholds{})
	assert.InDelta(t, 160, out.TotalAmount, 0.001, "2h at 80/h")
	assert.InDelta(t, 840, out.RemainingAmount, 0.001)
}
