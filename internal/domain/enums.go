package domain

// EntrySource records how a time entry came to be closed.
type EntrySource string

const (
	SourceManual   EntrySource = "manual"
	SourceTimer    EntrySource = "timer"
	SourceAutoStop EntrySource = "auto_stop"
	SourceOverrun  EntrySource = "overrun"
)

// ValidEntrySources is the canonical set of accepted entry source strings.
var ValidEntrySources = map[string]bool{
	"manual": true, "timer": true, "auto_stop": true, "overrun": true,
}

type BudgetType string

const (
	BudgetNone   BudgetType = "none"
	BudgetHours  BudgetType = "hours"
	BudgetAmount BudgetType = "amount"
)

// WarningType distinguishes which budget dimension triggered a warning.
type WarningType string

const (
	WarningTime   WarningType = "time"
	WarningAmount WarningType = "amount"
)

// AlertCategory classifies an outgoing notification. Categories carry their
// own action affordances and resend policies.
type AlertCategory string

const (
	AlertInterrupt     AlertCategory = "interrupt"
	AlertOverrun       AlertCategory = "overrun"
	AlertBudgetWarning AlertCategory = "budget_warning"
	AlertBreakReminder AlertCategory = "break_reminder"
	AlertNudge         AlertCategory = "nudge"
)

// PomodoroPhase is the optional focus/break sub-state carried on a running timer.
type PomodoroPhase string

const (
	PomodoroNone  PomodoroPhase = ""
	PomodoroFocus PomodoroPhase = "focus"
	PomodoroBreak PomodoroPhase = "break"
)
