package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/domain"
)

func newStopCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := app.Identity()
			if err != nil {
				return err
			}

			res, err := app.Timers.Stop(ctx, id, domain.SourceManual)
			if err != nil {
				return err
			}

			if !res.Stopped {
				fmt.Println("No running timer.")
				return nil
			}
			fmt.Printf("Stopped. Logged %s (entry %s)\n",
				(time.Duration(res.Seconds) * time.Second).String(), res.EntryID)
			return nil
		},
	}

	return cmd
}
