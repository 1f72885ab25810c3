package schedule

import (
	"context"
	"log/slog"
	"time"
)

// SweepFunc is a periodic sweep body. Errors are logged; the next tick
// retries naturally.
type SweepFunc func(ctx context.Context) error

// Periodic invokes fn on a fixed interval until ctx is cancelled.
// It blocks; run it on its own goroutine.
func Periodic(ctx context.Context, interval time.Duration, name string, fn SweepFunc, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				logger.Error("periodic sweep failed", "sweep", name, "error", err)
			}
		}
	}
}
