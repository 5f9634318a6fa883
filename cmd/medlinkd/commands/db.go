package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medlinkvn/medlink/backup"
	"github.com/medlinkvn/medlink/config"
)

// DbCmd manages database operations
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage MedLink database operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// DbMigrateCmd runs pending schema migrations
var DbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("path")

		// openDatabase migrates as a side effect
		database, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Println("Database schema is up to date")
		return nil
	},
}

// DbBackupCmd creates a manual backup
var DbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a database backup now",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("path")
		label, _ := cmd.Flags().GetString("label")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		database, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		runner := backup.NewSQLiteRunner(database, cfg.Backup.Directory)
		rec, err := runner.CreateBackup(context.Background(), label, "operator")
		if err != nil {
			return err
		}

		fmt.Printf("Backup created: %s\n", rec.FilePath)
		fmt.Printf("  ID:   %s\n", rec.ID)
		fmt.Printf("  Size: %d bytes\n", rec.FileSize)
		return nil
	},
}

// DbBackupsCmd lists recorded backups
var DbBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List recorded database backups",
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

		runner := backup.NewSQLiteRunner(database, cfg.Backup.Directory)
		backups, err := runner.ListBackups(context.Background())
		if err != nil {
			return err
		}

		if len(backups) == 0 {
			fmt.Println("No backups recorded")
			return nil
		}

		for _, b := range backups {
			fmt.Printf("%s  %s  %10d bytes  %s  (%s by %s)\n",
				b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.FileSize, b.FilePath, b.Label, b.Actor)
		}
		return nil
	},
}

func init() {
	DbMigrateCmd.Flags().String("path", "", "Database path (default from config)")
	DbBackupCmd.Flags().String("path", "", "Database path (default from config)")
	DbBackupCmd.Flags().String("label", "manual", "Label recorded with the backup")

	DbCmd.AddCommand(DbMigrateCmd)
	DbCmd.AddCommand(DbBackupCmd)
	DbCmd.AddCommand(DbBackupsCmd)
}
