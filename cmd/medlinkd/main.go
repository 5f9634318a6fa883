package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medlinkvn/medlink/cmd/medlinkd/commands"
	"github.com/medlinkvn/medlink/config"
	"github.com/medlinkvn/medlink/logger"
)

var rootCmd = &cobra.Command{
	Use:   "medlinkd",
	Short: "MedLink - telemedicine platform background daemon",
	Long: `MedLink background daemon.

Runs the platform's recurring jobs: weekly doctor compliance evaluation,
reinstatement of expired bans, daily expiry of schedule overrides and
appointment reminders, and scheduled database backups.

Available commands:
  jobs    - Manage the recurring background jobs daemon
  db      - Manage database operations (migrate, backup)
  config  - Show and locate configuration
  version - Show version information

Examples:
  medlinkd jobs start      # Start all job loops
  medlinkd jobs status     # Show recent executions
  medlinkd db backup       # Create a backup now
  medlinkd config show     # Show effective configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands with plain stdout output skip logger noise
		if cmd.Name() == "show" || cmd.Name() == "path" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Initialize(cfg.Logging.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
