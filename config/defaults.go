package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "medlink.db")

	// Job scheduling defaults
	v.SetDefault("jobs.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("jobs.backoff_seconds", 3600)
	v.SetDefault("jobs.guard_interval_seconds", 60)
	v.SetDefault("jobs.execution_history_limit", 20)

	// Backup defaults
	v.SetDefault("backup.auto_enabled", false)
	v.SetDefault("backup.frequency", "daily")
	v.SetDefault("backup.time", "02:00")
	v.SetDefault("backup.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("backup.directory", "backups")
	v.SetDefault("backup.retention_days", 30)
	v.SetDefault("backup.keep_count", 7)

	// Logging defaults
	v.SetDefault("logging.json", false)
}
