package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/repository"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.Identity()
			if err != nil {
				return err
			}

			view, err := app.Timers.GetRunningTimer(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Println("No running timer.")
				return nil
			}
			if err != nil {
				return err
			}

			elapsed := time.Duration(view.Timer.ElapsedSeconds(time.Now())) * time.Second
			name := view.ProjectName
			if view.ClientName != "" {
				name = fmt.Sprintf("%s (%s)", view.ProjectName, view.ClientName)
			}
			fmt.Printf("Tracking %s for %s\n", name, elapsed)
			if view.HourlyRate > 0 {
				fmt.Printf("Earned so far: %.2f\n", elapsed.Hours()*view.HourlyRate)
			}
			if view.Timer.PomodoroPhase != "" {
				fmt.Printf("Pomodoro: %s phase\n", view.Timer.PomodoroPhase)
			}
			if view.Timer.AwaitingAck {
				fmt.Println("Check-in pending: run `tempora ack` to confirm you are still working.")
			} else if view.Timer.NextInterruptAt != nil {
				fmt.Printf("Next check-in at %s\n", view.Timer.NextInterruptAt.Format("15:04:05"))
			}
			return nil
		},
	}

	return cmd
}
