package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mins(v int) *int { return &v }

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestQuietHours_OvernightWrap(t *testing.T) {
	q := QuietHours{StartMin: mins(22 * 60), EndMin: mins(6 * 60)} // 22:00-06:00

	assert.True(t, q.Contains(at(23, 30)), "23:30 is inside an overnight window")
	assert.True(t, q.Contains(at(5, 59)), "05:59 is inside an overnight window")
	assert.True(t, q.Contains(at(22, 0)), "start is inclusive")
	assert.False(t, q.Contains(at(7, 0)), "07:00 is outside")
	assert.False(t, q.Contains(at(6, 0)), "end is exclusive")
	assert.False(t, q.Contains(at(12, 0)))
}

func TestQuietHours_SameDayWindow(t *testing.T) {
	q := QuietHours{StartMin: mins(9 * 60), EndMin: mins(17 * 60)}

	assert.True(t, q.Contains(at(12, 0)))
	assert.False(t, q.Contains(at(8, 59)))
	assert.False(t, q.Contains(at(17, 0)))
}

func TestQuietHours_Unconfigured(t *testing.T) {
	assert.False(t, QuietHours{}.Contains(at(3, 0)))
	assert.False(t, QuietHours{StartMin: mins(0)}.Contains(at(3, 0)), "half-configured window is ignored")

	degenerate := QuietHours{StartMin: mins(600), EndMin: mins(600)}
	assert.False(t, degenerate.Contains(at(10, 0)), "zero-width window never matches")
}

func TestRunningTimer_AckOverdue(t *testing.T) {
	now := time.Now().UTC()
	shown := now.Add(-30 * time.Second)
	timer := &RunningTimer{AwaitingAck: true, AckShownAt: &shown}

	assert.False(t, timer.AckOverdue(now, 60*time.Second), "30s elapsed is inside the grace window")
	assert.True(t, timer.AckOverdue(now.Add(60*time.Second), 60*time.Second))

	timer.AwaitingAck = false
	assert.False(t, timer.AckOverdue(now.Add(time.Hour), 60*time.Second), "not awaiting ack")

	timer.AwaitingAck = true
	timer.AckShownAt = nil
	assert.False(t, timer.AckOverdue(now.Add(time.Hour), 60*time.Second), "no ack timestamp recorded")
}

func TestDefaultPreferences(t *testing.T) {
	now := time.Now().UTC()
	p := DefaultPreferences(Identity{TenantID: "t1", UserID: "u1"}, now)

	assert.True(t, p.PushEnabled)
	assert.True(t, p.WarningsEnabled)
	assert.True(t, p.InterruptEnabled)
	assert.Equal(t, 60*time.Minute, p.InterruptInterval())
	assert.Equal(t, 2*time.Minute, p.EscalationDelay())
	assert.False(t, p.HasFallbackChannel(), "no addresses configured by default")
}

func TestHasFallbackChannel_RequiresAddress(t *testing.T) {
	p := &NotificationPreferences{EmailEnabled: true}
	assert.False(t, p.HasFallbackChannel(), "enabled channel without an address is unusable")

	p.EmailAddress = "user@example.com"
	assert.True(t, p.HasFallbackChannel())

	sms := &NotificationPreferences{SMSEnabled: true, PhoneNumber: "+4712345678"}
	assert.True(t, sms.HasFallbackChannel())
}
