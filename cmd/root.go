package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	backupcmd "github.com/SAP-F-2025/skill-tracker/cmd/backup"
	httpcmd "github.com/SAP-F-2025/skill-tracker/cmd/http"
	systemcmd "github.com/SAP-F-2025/skill-tracker/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "skill-tracker",
	Short: "Hospital staff skill assessment backend.",
	Long: `skill-tracker keeps hospitals, departments, staff assessments and patient
records in one shared document and serves them over HTTP with role-based access.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(httpcmd.NewServeCommand())
	rootCmd.AddCommand(systemcmd.NewMigrateCommand())
	rootCmd.AddCommand(systemcmd.NewHashPasswordCommand())
	rootCmd.AddCommand(backupcmd.NewBackupCommand())
}
