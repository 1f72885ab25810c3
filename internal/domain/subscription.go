package domain

import "time"

// PushSubscription is one registered push endpoint for a user. IsActive is
// flipped off when delivery reports the endpoint permanently gone; inactive
// rows are never retried.
type PushSubscription struct {
	ID         string
	TenantID   string
	UserID     string
	Endpoint   string
	P256dhKey  string
	AuthKey    string
	DeviceName string
	IsActive   bool
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
