package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func NewImportCommand() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the dataset with a full backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if in == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(in)
			}
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			if err := a.Services.Backup().Import(cmd.Context(), adminPrincipal, raw); err != nil {
				return err
			}
			a.Logger.Info("Backup imported", "file", in)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", `backup file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
