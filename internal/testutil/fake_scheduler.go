package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/tempora-app/tempora/internal/schedule"
)

// ScheduledTask records one call to the fake scheduler.
type ScheduledTask struct {
	Task    schedule.Task
	Payload schedule.Payload
	At      time.Time
	Delay   time.Duration
}

// FakeScheduler records scheduled tasks without ever firing them. Tests
// invoke task bodies directly, which matches the production contract: task
// bodies must be callable at any time and self-validate against state.
type FakeScheduler struct {
	mu    sync.Mutex
	tasks []ScheduledTask

	// FailWith, when set, is returned from every scheduling call to
	// exercise the fire-and-forget error handling.
	FailWith error
}

func (f *FakeScheduler) RunAt(_ context.Context, at time.Time, task schedule.Task, p schedule.Payload) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, ScheduledTask{Task: task, Payload: p, At: at})
	return nil
}

func (f *FakeScheduler) RunAfter(_ context.Context, delay time.Duration, task schedule.Task, p schedule.Payload) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, ScheduledTask{Task: task, Payload: p, Delay: delay})
	return nil
}

// Scheduled returns a snapshot of everything recorded so far.
func (f *FakeScheduler) Scheduled() []ScheduledTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ScheduledTask, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ScheduledFor returns recorded tasks matching the given task name.
func (f *FakeScheduler) ScheduledFor(task schedule.Task) []ScheduledTask {
	var out []ScheduledTask
	for _, st := range f.Scheduled() {
		if st.Task == task {
			out = append(out, st)
		}
	}
	return out
}

// Reset discards recorded tasks.
func (f *FakeScheduler) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = nil
}

var _ schedule.Scheduler = (*FakeScheduler)(nil)
