package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the MedLink configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config from %s: %w", configPath, err)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// Reload re-reads the config files into the live Viper instance and
// rebuilds the cached Config. Running jobs hold Settings handles on that
// instance, so replacing it would leave them polling stale values; the
// files are merged into the existing one instead.
func Reload() (*Config, error) {
	v := initViper()
	mergeConfigFiles(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &config
	return globalConfig, nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("MEDLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Merge configs in precedence order: system -> user -> project -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig searches for medlink.toml or config.toml by walking up
// the directory tree. Preference order: medlink.toml > config.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		mlPath := filepath.Join(dir, "medlink.toml")
		if _, err := os.Stat(mlPath); err == nil {
			return mlPath
		}

		configPath := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges configuration files in precedence order
// (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	medlinkDir := filepath.Join(homeDir, ".medlink")
	os.MkdirAll(medlinkDir, DefaultDirPermissions)

	projectConfig := findProjectConfig()
	configPaths := []string{
		"/etc/medlink/config.toml",
		filepath.Join(medlinkDir, "medlink.toml"),
	}

	if projectConfig != "" {
		configPaths = append(configPaths, projectConfig)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err == nil {
			tempViper := viper.New()
			tempViper.SetConfigFile(configPath)
			tempViper.SetConfigType("toml")

			if err := tempViper.ReadInConfig(); err == nil {
				for key, value := range tempViper.AllSettings() {
					v.Set(key, value)
				}
			}
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	v := initViper()
	return v.Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	v := initViper()
	return v.GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	v := initViper()
	return v.GetBool(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	v := initViper()
	return v.GetInt(key)
}

// GetDatabasePath returns the configured database path. The DB_PATH
// environment variable overrides the config file for dev use.
func GetDatabasePath() (string, error) {
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	config, err := Load()
	if err != nil {
		return "", err
	}
	return config.Database.Path, nil
}

// Settings is the runtime view of configuration that long-running jobs
// poll, so a reload picked up by the watcher is visible without a restart.
// *viper.Viper satisfies it.
type Settings interface {
	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
}
