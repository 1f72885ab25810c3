package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/budget"
)

func newBeatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beat",
		Short: "Send a heartbeat for the running timer",
		Long: "Send a heartbeat for the running timer. Heartbeats keep the timer " +
			"fresh and trigger budget evaluation; client UIs send one periodically.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.Identity()
			if err != nil {
				return err
			}

			res, err := app.Timers.Heartbeat(ctx, id)
			if err != nil {
				return err
			}

			if !res.Active {
				fmt.Println("No running timer.")
				return nil
			}
			switch res.BudgetOutcome.Kind {
			case budget.OutcomeOverrun:
				fmt.Println("Heartbeat recorded. Project budget is exhausted.")
			case budget.OutcomeWarning:
				fmt.Println("Heartbeat recorded. Project budget is nearly exhausted.")
			default:
				fmt.Println("Heartbeat recorded.")
			}
			return nil
		},
	}

	return cmd
}
