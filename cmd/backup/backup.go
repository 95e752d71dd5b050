// Package backup holds the offline backup commands. They act as the
// administrator and therefore always handle the full dataset.
package backup

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/skill-tracker/internal/app"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

func NewBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the full dataset",
	}

	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewImportCommand())

	return cmd
}

var adminPrincipal = &models.Principal{Role: models.RoleAdmin, Name: "admin"}

// openApp builds the process without change watching; a one-shot command
// reads the remote document on demand.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, logger, err := app.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logger, app.Options{})
}

func closeApp(ctx context.Context, a *app.App) {
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		a.Logger.Warn("Shutdown incomplete", "error", err)
	}
}
