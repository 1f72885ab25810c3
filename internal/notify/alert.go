// Package notify delivers alerts: push to every registered endpoint first,
// secondary channels (email/SMS/chat webhook) as fallback, with a delayed
// escalation check that re-validates relevance before re-firing fallbacks.
package notify

import (
	"encoding/json"

	"github.com/tempora-app/tempora/internal/domain"
)

// Status is the terminal outcome of a dispatch or escalation step.
type Status string

const (
	StatusSent             Status = "sent"
	StatusDisabled         Status = "notifications_disabled"
	StatusNoSubscriptions  Status = "no_subscriptions"
	StatusQuietHours       Status = "quiet_hours"
	StatusPushFailed       Status = "push_failed"
	StatusNoChannels       Status = "no_channels"
	StatusDNDEnabled       Status = "dnd_enabled"
	StatusNoLongerRelevant Status = "no_longer_relevant"
	StatusFailed           Status = "failed"
)

// Action is a presentation affordance attached to the outgoing payload.
// Not core logic, but preserved for interface compatibility with the
// presentation layers.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Alert is one notification to be delivered to a user. TimerID ties
// interrupt alerts to a specific timer instance for the escalation
// relevance check.
type Alert struct {
	Identity domain.Identity
	Category domain.AlertCategory
	Title    string
	Body     string
	TimerID  string
}

// Actions returns the category's action affordances.
func (a Alert) Actions() []Action {
	switch a.Category {
	case domain.AlertInterrupt:
		return []Action{
			{ID: "continue", Label: "Still Working"},
			{ID: "stop", Label: "Stop Timer"},
		}
	case domain.AlertOverrun, domain.AlertBudgetWarning:
		return []Action{
			{ID: "stop", Label: "Stop Timer"},
			{ID: "switch_project", Label: "Switch Project"},
		}
	case domain.AlertNudge:
		return []Action{
			{ID: "stop", Label: "Stop Timer"},
			{ID: "snooze", Label: "Snooze 5 min"},
		}
	default:
		return nil
	}
}

// pushPayload is the JSON body delivered to push endpoints.
type pushPayload struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	TimerID  string   `json:"timer_id,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// Payload renders the alert as the push wire format.
func (a Alert) Payload() ([]byte, error) {
	return json.Marshal(pushPayload{
		Category: string(a.Category),
		Title:    a.Title,
		Body:     a.Body,
		TimerID:  a.TimerID,
		Actions:  a.Actions(),
	})
}

// Result summarizes a dispatch: the push-stage status, endpoints delivered,
// and the fallback stage's status when it ran.
type Result struct {
	Status         Status
	Delivered      int
	FallbackStatus Status
}
