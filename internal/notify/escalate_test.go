package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
	"github.com/tempora-app/tempora/internal/testutil"
)

// stubTimers serves a single timer, or ErrNotFound when nil.
type stubTimers struct {
	timer *domain.RunningTimer
}

func (s *stubTimers) GetByUser(context.Context, domain.Identity) (*domain.RunningTimer, error) {
	if s.timer == nil {
		return nil, repository.ErrNotFound
	}
	return s.timer, nil
}

type escalatorFixture struct {
	prefs  *repository.SQLitePrefsRepo
	timers *stubTimers
	email  *fakeEmail
	e      *Escalator
}

func newEscalatorFixture(t *testing.T) *escalatorFixture {
	t.Helper()
	database := testutil.NewTestDB(t)

	f := &escalatorFixture{
		prefs:  repository.NewSQLitePrefsRepo(database),
		timers: &stubTimers{},
		email:  &fakeEmail{},
	}
	fallback := NewFallbackDispatcher(f.email, &fakeSMS{}, &fakeChat{}, discardLogger())
	f.e = NewEscalator(f.prefs, f.timers, fallback, discardLogger(), time.Now)
	return f
}

func (f *escalatorFixture) setPrefs(t *testing.T, mutate func(*domain.NotificationPreferences)) {
	t.Helper()
	ctx := context.Background()
	p, err := f.prefs.GetOrDefault(ctx, testutil.TestIdentity(), time.Now().UTC())
	require.NoError(t, err)
	mutate(p)
	require.NoError(t, f.prefs.Upsert(ctx, p))
}

func interruptPayload(timerID string) schedule.Payload {
	return schedule.Payload{
		Identity:      testutil.TestIdentity(),
		TimerID:       timerID,
		AlertCategory: domain.AlertInterrupt,
		AlertTitle:    "Still working?",
		AlertBody:     "Confirm to keep the timer running.",
	}
}

func TestEscalator_DNDWins(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.DoNotDisturb = true
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	status, err := f.e.Check(context.Background(), interruptPayload("timer-1"))
	require.NoError(t, err)
	assert.Equal(t, StatusDNDEnabled, status)
	assert.Zero(t, f.email.count())
}

func TestEscalator_NoChannels(t *testing.T) {
	f := newEscalatorFixture(t)

	status, err := f.e.Check(context.Background(), interruptPayload("timer-1"))
	require.NoError(t, err)
	assert.Equal(t, StatusNoChannels, status)
}

func TestEscalator_Interrupt_TimerGone(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	status, err := f.e.Check(context.Background(), interruptPayload("timer-1"))
	require.NoError(t, err)
	assert.Equal(t, StatusNoLongerRelevant, status)
	assert.Zero(t, f.email.count())
}

func TestEscalator_Interrupt_TimerReplaced(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	shown := time.Now().UTC()
	f.timers.timer = testutil.NewTestTimer(testutil.TestIdentity(), "proj-1", testutil.WithAwaitingAck(shown))

	status, err := f.e.Check(context.Background(), interruptPayload("some-older-timer"))
	require.NoError(t, err)
	assert.Equal(t, StatusNoLongerRelevant, status)
}

func TestEscalator_Interrupt_AlreadyAcked(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	f.timers.timer = testutil.NewTestTimer(testutil.TestIdentity(), "proj-1")

	status, err := f.e.Check(context.Background(), interruptPayload(f.timers.timer.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusNoLongerRelevant, status)
}

func TestEscalator_Interrupt_StillRelevant(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	shown := time.Now().UTC()
	f.timers.timer = testutil.NewTestTimer(testutil.TestIdentity(), "proj-1", testutil.WithAwaitingAck(shown))

	status, err := f.e.Check(context.Background(), interruptPayload(f.timers.timer.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusSent, status)
	assert.Equal(t, 1, f.email.count())
}

func TestEscalator_NonInterruptSkipsRelevanceCheck(t *testing.T) {
	f := newEscalatorFixture(t)
	f.setPrefs(t, func(p *domain.NotificationPreferences) {
		p.EmailEnabled = true
		p.EmailAddress = "dev@example.com"
	})

	// Budget alerts escalate even after the timer stopped; the overrun
	// already happened.
	p := schedule.Payload{
		Identity:      testutil.TestIdentity(),
		AlertCategory: domain.AlertOverrun,
		AlertTitle:    "Project over budget",
		AlertBody:     "Tracked 2.1h of a 2h budget.",
	}
	status, err := f.e.Check(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, status)
	assert.Equal(t, 1, f.email.count())
}
