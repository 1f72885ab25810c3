package timer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
	"github.com/tempora-app/tempora/internal/testutil"
)

func newReaperFixture(t *testing.T) (*fixture, *Reaper) {
	t.Helper()
	f := newFixture(t)
	r := NewReaper(
		repository.NewSQLiteTimerRepo(f.database),
		db.NewSQLiteUnitOfWork(f.database),
		f.svc,
		f.alerts,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		f.clock.Now,
	)
	return f, r
}

func TestReaper_SweepMissedAcks_ForceCloses(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	start, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)
	_, err = f.svc.RequestInterrupt(ctx, id)
	require.NoError(t, err)

	// Well past the grace window; the one-shot autostop task was "lost".
	f.clock.Advance(5 * time.Minute)

	require.NoError(t, r.SweepMissedAcks(ctx))

	_, err = f.timerRepo().GetByUser(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The main entry closed as an autostop.
	entry, err := f.entryRepo().GetByID(ctx, id.TenantID, start.EntryID)
	require.NoError(t, err)
	assert.False(t, entry.IsOpen())
	assert.Equal(t, domain.SourceAutoStop, entry.Source)

	// An informational placeholder covers the unacknowledged tail.
	entries, err := f.entryRepo().ListByUser(ctx, id, 10)
	require.NoError(t, err)
	var placeholder *domain.TimeEntry
	for _, e := range entries {
		if e.IsOverrun {
			placeholder = e
		}
	}
	require.NotNil(t, placeholder)
	assert.Equal(t, domain.SourceOverrun, placeholder.Source)
	require.NotNil(t, placeholder.Seconds)
	assert.Equal(t, 300, *placeholder.Seconds)

	// The placeholder never counts toward the budget.
	total, err := f.entryRepo().SumClosedSeconds(ctx, id.TenantID, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, total)
}

func TestReaper_SweepMissedAcks_SkipsFreshPrompts(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	_, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)
	_, err = f.svc.RequestInterrupt(ctx, id)
	require.NoError(t, err)

	// Inside the grace window the sweep leaves the timer alone.
	f.clock.Advance(30 * time.Second)

	require.NoError(t, r.SweepMissedAcks(ctx))

	timer, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, timer.AwaitingAck)
}

func TestReaper_SweepMissedAcks_SkipsAckedTimer(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	_, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)
	_, err = f.svc.RequestInterrupt(ctx, id)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)

	// The user answers just before the sweep runs.
	_, err = f.svc.AckInterrupt(ctx, id, true)
	require.NoError(t, err)

	require.NoError(t, r.SweepMissedAcks(ctx))

	timer, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, timer.AwaitingAck)
}

func TestReaper_SweepLongRunning_Nudges(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	start, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)

	require.NoError(t, r.SweepLongRunning(ctx))

	sent := f.alerts.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.AlertNudge, sent[0].Category)
	assert.Equal(t, start.TimerID, sent[0].TimerID)

	timer, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, timer.NudgeSentAt)

	// A second sweep inside the resend window stays quiet.
	f.clock.Advance(10 * time.Minute)
	require.NoError(t, r.SweepLongRunning(ctx))
	assert.Len(t, f.alerts.Sent(), 1)

	// Past the resend window it nudges again.
	f.clock.Advance(25 * time.Minute)
	require.NoError(t, r.SweepLongRunning(ctx))
	assert.Len(t, f.alerts.Sent(), 2)
}

func TestReaper_SweepDueInterrupts_PromptsOverdueTimer(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	start, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)

	// Drop the one-shot check-in task, as a process restart would.
	f.sched.Reset()
	f.clock.Advance(time.Duration(domain.DefaultInterruptIntervalMin)*time.Minute + time.Minute)

	require.NoError(t, r.SweepDueInterrupts(ctx))

	timer, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, start.TimerID, timer.ID)
	assert.True(t, timer.AwaitingAck)
	require.NotNil(t, timer.AckShownAt)

	// The prompt re-arms the missed-ack autostop.
	autostops := f.sched.ScheduledFor(schedule.TaskMissedAckAutoStop)
	require.Len(t, autostops, 1)
	assert.Equal(t, start.TimerID, autostops[0].Payload.TimerID)
}

func TestReaper_SweepDueInterrupts_SkipsTimerBeforeDeadline(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	_, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)

	require.NoError(t, r.SweepDueInterrupts(ctx))

	timer, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, timer.AwaitingAck)
}

func TestReaper_SweepDueInterrupts_LeavesExistingPrompt(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	_, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)
	_, err = f.svc.RequestInterrupt(ctx, id)
	require.NoError(t, err)

	before, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, before.AckShownAt)
	shown := *before.AckShownAt

	f.clock.Advance(90 * time.Minute)

	require.NoError(t, r.SweepDueInterrupts(ctx))

	after, err := f.timerRepo().GetByUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, after.AwaitingAck)
	require.NotNil(t, after.AckShownAt)
	assert.WithinDuration(t, shown, *after.AckShownAt, time.Second)
}

func TestReaper_SweepLongRunning_IgnoresShortTimers(t *testing.T) {
	f, r := newReaperFixture(t)
	ctx := context.Background()
	id := testutil.TestIdentity()

	_, err := f.svc.Start(ctx, id, f.project.ID, StartOptions{})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)

	require.NoError(t, r.SweepLongRunning(ctx))
	assert.Empty(t, f.alerts.Sent())
}
