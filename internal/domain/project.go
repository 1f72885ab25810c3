package domain

import "time"

// Project is read-only from the timer core's perspective: the state machine
// validates tenant ownership and the budget evaluator reads rate and budget.
type Project struct {
	ID          string
	TenantID    string
	ClientID    string
	Name        string
	HourlyRate  float64
	BudgetType  BudgetType
	BudgetValue *float64
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasBudget reports whether a budget is configured and positive.
func (p *Project) HasBudget() bool {
	if p.BudgetType == BudgetNone || p.BudgetType == "" {
		return false
	}
	return p.BudgetValue != nil && *p.BudgetValue > 0
}

// Client exists for display joins on the running-timer view only.
type Client struct {
	ID       string
	TenantID string
	Name     string
}
