package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/internal/config"
	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/timer"
)

// App holds the wired services the CLI commands run against.
type App struct {
	Timers timer.Service
	Reaper *timer.Reaper
	Config *config.Config
	Logger *slog.Logger

	tenantFlag string
	userFlag   string
}

// Identity resolves the caller identity from flags, falling back to the
// configured defaults. Every command requires one; there is no anonymous
// timer.
func (a *App) Identity() (domain.Identity, error) {
	id := domain.Identity{TenantID: a.tenantFlag, UserID: a.userFlag}
	if id.TenantID == "" {
		id.TenantID = a.Config.Defaults.Tenant
	}
	if id.UserID == "" {
		id.UserID = a.Config.Defaults.User
	}
	if id.IsZero() || id.TenantID == "" || id.UserID == "" {
		return domain.Identity{}, fmt.Errorf("resolve identity (set --tenant/--user or defaults in config): %w", timer.ErrUnauthenticated)
	}
	return id, nil
}

// NewRootCmd creates the top-level "tempora" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempora",
		Short:         "Timer lifecycle and alerting engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&app.tenantFlag, "tenant", "", "Tenant ID (overrides configured default)")
	root.PersistentFlags().StringVar(&app.userFlag, "user", "", "User ID (overrides configured default)")

	root.AddCommand(
		newStartCmd(app),
		newStopCmd(app),
		newStatusCmd(app),
		newBeatCmd(app),
		newAckCmd(app),
		newServeCmd(app),
		newVersionCmd(),
	)

	return root
}
