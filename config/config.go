// Package config loads the MedLink daemon configuration from TOML files
// and environment variables, watches it for changes, and persists
// UI-driven edits.
package config

// Config represents the core MedLink configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JobsConfig configures the recurring background jobs
type JobsConfig struct {
	Timezone              string `mapstructure:"timezone"`                // local timezone for trigger instants
	BackoffSeconds        int    `mapstructure:"backoff_seconds"`         // sleep after a failed cycle
	GuardIntervalSeconds  int    `mapstructure:"guard_interval_seconds"`  // minimum spacing between dispatches of the same job
	ExecutionHistoryLimit int    `mapstructure:"execution_history_limit"` // rows returned by status queries
}

// BackupConfig configures the automated database backup job
type BackupConfig struct {
	AutoEnabled   bool   `mapstructure:"auto_enabled"`   // run the backup job at all
	Frequency     string `mapstructure:"frequency"`      // daily, weekly or monthly
	Time          string `mapstructure:"time"`           // "HH:MM" local run time
	Timezone      string `mapstructure:"timezone"`       // timezone for the run time
	Directory     string `mapstructure:"directory"`      // where backup files are written
	RetentionDays int    `mapstructure:"retention_days"` // informational, shown in status output
	KeepCount     int    `mapstructure:"keep_count"`     // backups retained by cleanup
}

// LoggingConfig configures log output
type LoggingConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON instead of console output
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
