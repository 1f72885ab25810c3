package domain

import "time"

// TimeEntry is a record of worked time, open (no stop timestamp) or closed.
// Closed entries are immutable. Exactly one open non-overrun entry may exist
// per active RunningTimer; it is created and closed atomically with the timer.
type TimeEntry struct {
	ID        string
	TenantID  string
	UserID    string
	ProjectID string
	StartedAt time.Time
	StoppedAt *time.Time
	Seconds   *int
	Source    EntrySource
	Note      string

	// IsOverrun marks an informational placeholder covering time that
	// elapsed after a missed acknowledgment. Placeholders never count
	// toward budgets and never block timer operations.
	IsOverrun bool

	CreatedAt time.Time
}

// IsOpen reports whether the entry is still accumulating time.
func (e *TimeEntry) IsOpen() bool {
	return e.StoppedAt == nil
}
