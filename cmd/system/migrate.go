package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/skill-tracker/internal/app"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

func NewMigrateCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the remote document table and its change trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, logger, err := app.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			remote, err := app.NewRemote(cfg, logger)
			if err != nil {
				return err
			}
			defer remote.Close()

			migrator, ok := remote.(repositories.Migrator)
			if !ok {
				fmt.Printf("Remote driver %q has no schema, nothing to migrate.\n", cfg.Remote.Driver)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			fmt.Println("Running migrations for the remote document store.")
			if err := migrator.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Maximum time the migration may take")

	return cmd
}
