package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/timer"
)

func newStartCmd(app *App) *cobra.Command {
	var pomodoro bool
	var note string

	cmd := &cobra.Command{
		Use:   "start <project-id>",
		Short: "Start a timer on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.Identity()
			if err != nil {
				return err
			}

			res, err := app.Timers.Start(ctx, id, args[0], timer.StartOptions{
				Pomodoro: pomodoro,
				Note:     note,
			})
			if err != nil {
				return err
			}

			if res.Superseded {
				fmt.Println("Stopped the previous timer.")
			}
			fmt.Printf("Timer started on %s at %s (timer %s)\n",
				res.ProjectName, res.StartedAt.Format("15:04:05"), res.TimerID)
			if res.NextInterruptAt != nil {
				fmt.Printf("Next check-in at %s\n", res.NextInterruptAt.Format("15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pomodoro, "pomodoro", false, "Start in pomodoro focus mode")
	cmd.Flags().StringVar(&note, "note", "", "Note for the time entry")

	return cmd
}
