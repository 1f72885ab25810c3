package cli

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/schedule"
	"github.com/tempora-app/tempora/internal/timer"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background sweeps until interrupted",
		Long: "Run the periodic sweeps that raise overdue check-in prompts, " +
			"catch missed check-ins, and nudge long-running timers. Deferred " +
			"one-shot tasks fire in this process too, so keep it running " +
			"alongside any timer activity.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.Logger.Info("sweeps starting",
				"interrupt_interval", timer.InterruptSweepInterval.String(),
				"missed_ack_interval", timer.MissedAckSweepInterval.String(),
				"long_running_interval", timer.LongRunningSweepInterval.String(),
			)

			var wg sync.WaitGroup
			wg.Add(3)
			go func() {
				defer wg.Done()
				schedule.Periodic(ctx, timer.InterruptSweepInterval, "interrupt_due", app.Reaper.SweepDueInterrupts, app.Logger)
			}()
			go func() {
				defer wg.Done()
				schedule.Periodic(ctx, timer.MissedAckSweepInterval, "missed_ack", app.Reaper.SweepMissedAcks, app.Logger)
			}()
			go func() {
				defer wg.Done()
				schedule.Periodic(ctx, timer.LongRunningSweepInterval, "long_running", app.Reaper.SweepLongRunning, app.Logger)
			}()

			<-ctx.Done()
			wg.Wait()
			app.Logger.Info("sweeps stopped")
			return nil
		},
	}

	return cmd
}
