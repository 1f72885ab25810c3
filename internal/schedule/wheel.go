package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskFunc is a registered task body. Errors are logged, never retried by
// the wheel; the task's next natural trigger re-evaluates state instead.
type TaskFunc func(ctx context.Context, p Payload) error

// Wheel is an in-process Scheduler backed by time.AfterFunc. Tasks fire on
// their own goroutine against a background context. Pending tasks do not
// survive a process restart; the reaper sweeps cover the missed-ack
// autostop when that happens.
type Wheel struct {
	mu       sync.RWMutex
	handlers map[Task]TaskFunc
	logger   *slog.Logger
}

// NewWheel creates an empty Wheel. Register task bodies before scheduling.
func NewWheel(logger *slog.Logger) *Wheel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wheel{handlers: make(map[Task]TaskFunc), logger: logger}
}

// Register binds a task body to a task name. Later registrations replace
// earlier ones.
func (w *Wheel) Register(task Task, fn TaskFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[task] = fn
}

func (w *Wheel) RunAt(ctx context.Context, at time.Time, task Task, p Payload) error {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	return w.RunAfter(ctx, delay, task, p)
}

func (w *Wheel) RunAfter(_ context.Context, delay time.Duration, task Task, p Payload) error {
	w.mu.RLock()
	_, ok := w.handlers[task]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("scheduling %s: no handler registered", task)
	}

	time.AfterFunc(delay, func() {
		w.fire(task, p)
	})
	return nil
}

func (w *Wheel) fire(task Task, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("deferred task panicked", "task", string(task), "panic", r)
		}
	}()

	w.mu.RLock()
	fn, ok := w.handlers[task]
	w.mu.RUnlock()
	if !ok {
		w.logger.Error("deferred task has no handler", "task", string(task))
		return
	}

	if err := fn(context.Background(), p); err != nil {
		w.logger.Error("deferred task failed",
			"task", string(task),
			"tenant", p.Identity.TenantID,
			"user", p.Identity.UserID,
			"error", err,
		)
	}
}

var _ Scheduler = (*Wheel)(nil)
