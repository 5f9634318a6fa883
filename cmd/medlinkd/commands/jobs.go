package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/medlinkvn/medlink/backup"
	"github.com/medlinkvn/medlink/clinic"
	"github.com/medlinkvn/medlink/compliance"
	"github.com/medlinkvn/medlink/config"
	"github.com/medlinkvn/medlink/logger"
	"github.com/medlinkvn/medlink/schedule"
)

// JobsCmd manages the recurring background jobs daemon
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage the recurring background jobs daemon",
	Long: `Recurring background jobs for the MedLink platform.

The daemon runs five independent job loops:
  doctor-ban       - weekly compliance evaluation (Thursday 12:00)
  doctor-unban     - weekly reinstatement of expired bans (Sunday 14:00)
  override-expiry  - daily expiry of past schedule overrides (01:00)
  reminder-expiry  - daily expiry of stale appointment reminders (01:00)
  auto-backup      - scheduled database snapshots (config-driven)

Example:
  medlinkd jobs start      # Start all job loops in foreground
  medlinkd jobs status     # Show recent executions per job`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// JobsStartCmd starts all job loops
var JobsStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start all job loops in foreground",
	Long: `Start every recurring job loop and run until interrupted.

Each loop sleeps until its next trigger instant, dispatches its unit of
work without blocking the schedule, and survives transient failures with
a fixed backoff. Ctrl+C stops all loops and waits for in-flight work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		loc, err := time.LoadLocation(cfg.Jobs.Timezone)
		if err != nil {
			logger.Warnw("Invalid jobs timezone, falling back to UTC",
				"timezone", cfg.Jobs.Timezone, "error", err)
			loc = time.UTC
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := clinic.NewStore(database)
		executions := schedule.NewExecutionStore(database)
		clock := schedule.SystemClock()
		settings := config.GetViper()

		runner := backup.NewSQLiteRunner(database, cfg.Backup.Directory)

		tasks := []interface {
			schedule.Task
			LoopConfig() schedule.LoopConfig
		}{
			compliance.NewBanJob(store, loc, clock, logger.Logger),
			compliance.NewUnbanJob(store, loc, clock, logger.Logger),
			compliance.NewOverrideExpiryJob(store, cfg.Jobs.Timezone, clock, logger.Logger),
			compliance.NewReminderExpiryJob(store, cfg.Jobs.Timezone, clock, logger.Logger),
			backup.NewJob(runner, settings, logger.Logger),
		}

		var loops []*schedule.Loop
		for _, task := range tasks {
			loop := schedule.NewLoop(ctx, task, task.LoopConfig(), nil, executions, clock, logger.Logger)
			loop.Start()
			loops = append(loops, loop)
		}

		// Hot-reload config edits while the daemon runs.
		watcher := startConfigWatcher()

		fmt.Printf("MedLink jobs daemon started\n")
		fmt.Printf("  Jobs: %d\n", len(loops))
		fmt.Printf("  Timezone: %s\n", cfg.Jobs.Timezone)
		fmt.Printf("  Database: %s\n", cfg.Database.Path)
		fmt.Printf("\nPress Ctrl+C for graceful shutdown\n\n")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Printf("\nShutting down job loops...\n")

		if watcher != nil {
			watcher.Stop()
		}
		for _, loop := range loops {
			loop.Stop()
		}

		cancel()

		fmt.Printf("MedLink jobs daemon stopped\n")
		return nil
	},
}

// JobsStatusCmd shows recent executions per job
var JobsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent job executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		executions := schedule.NewExecutionStore(database)
		jobNames := []string{"doctor-ban", "doctor-unban", "override-expiry", "reminder-expiry", "auto-backup"}

		for _, name := range jobNames {
			records, err := executions.ListRecentExecutions(name, limit)
			if err != nil {
				return fmt.Errorf("failed to list executions for %s: %w", name, err)
			}

			fmt.Printf("%s (%d recent)\n", name, len(records))
			for _, e := range records {
				line := fmt.Sprintf("  %s  %-9s  started %s", e.ID, e.Status, e.StartedAt)
				if e.DurationMs != nil {
					line += fmt.Sprintf("  %dms", *e.DurationMs)
				}
				if e.ResultSummary != nil {
					line += "  " + *e.ResultSummary
				}
				if e.ErrorMessage != nil {
					line += "  error: " + *e.ErrorMessage
				}
				fmt.Println(line)
			}
		}

		return nil
	},
}

// startConfigWatcher watches the user config file if it exists. A missing
// file just means nothing to watch.
func startConfigWatcher() *config.ConfigWatcher {
	configPath := config.GetUserConfigPath()
	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil
	}

	watcher, err := config.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watcher unavailable", "path", configPath, "error", err)
		return nil
	}

	config.SetGlobalWatcher(watcher)
	watcher.OnReload(func(cfg *config.Config) error {
		logger.Infow("Runtime config updated",
			"backup_auto_enabled", cfg.Backup.AutoEnabled,
			"backup_frequency", cfg.Backup.Frequency,
		)
		return nil
	})
	watcher.Start()
	return watcher
}

func init() {
	JobsStatusCmd.Flags().IntP("limit", "n", 5, "Executions to show per job")

	JobsCmd.AddCommand(JobsStartCmd)
	JobsCmd.AddCommand(JobsStatusCmd)
}
