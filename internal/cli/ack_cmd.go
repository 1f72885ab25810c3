package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/timer"
)

func newAckCmd(app *App) *cobra.Command {
	var stop bool

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Answer a pending still-working check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.Identity()
			if err != nil {
				return err
			}

			res, err := app.Timers.AckInterrupt(ctx, id, !stop)
			if err != nil {
				return err
			}

			switch res.Action {
			case timer.AckAlreadyHandled:
				fmt.Println("Nothing to acknowledge.")
			case timer.AckContinued:
				fmt.Println("Still working, timer continues.")
				if res.NextInterruptAt != nil {
					fmt.Printf("Next check-in at %s\n", res.NextInterruptAt.Format("15:04:05"))
				}
			case timer.AckStopped:
				fmt.Printf("Stopped. Logged %s\n", (time.Duration(res.Seconds) * time.Second).String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stop, "stop", false, "Stop the timer instead of continuing")

	return cmd
}
