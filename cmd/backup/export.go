package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/skill-tracker/internal/services"
)

func NewExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a)

			b, err := a.Services.Backup().Export(cmd.Context(), adminPrincipal)
			if err != nil {
				return err
			}
			if out == "-" {
				return writeBackup(cmd.OutOrStdout(), b)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := writeBackup(f, b); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.Logger.Info("Backup exported", "file", out, "type", b.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "full-backup.json", `output file, "-" for stdout`)

	return cmd
}

func writeBackup(w io.Writer, b *services.Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
