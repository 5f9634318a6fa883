package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/medlinkvn/medlink/errors"
	"github.com/medlinkvn/medlink/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before
// modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// Rotate: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old config backup", "path", back3, "error", err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// GetUserConfigPath returns the path to the user config file in
// ~/.medlink/medlink.toml
func GetUserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".medlink", "medlink.toml")
}

// loadOrInitializeUserConfig loads the user config file, or starts an
// empty one if it doesn't exist
func loadOrInitializeUserConfig() (map[string]interface{}, string, error) {
	configPath := GetUserConfigPath()
	if configPath == "" {
		return nil, "", errors.New("could not determine home directory")
	}

	medlinkDir := filepath.Dir(configPath)
	if err := os.MkdirAll(medlinkDir, 0750); err != nil {
		return nil, "", errors.Wrap(err, "failed to create .medlink directory")
	}

	var config map[string]interface{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, "", errors.Wrap(err, "failed to parse user config")
		}
	} else {
		config = make(map[string]interface{})
	}

	return config, configPath, nil
}

// saveUserConfig writes the config to the user config file with backup
func saveUserConfig(config map[string]interface{}, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write user config")
	}

	return nil
}

// updateSection sets one key within a named section of the user config
func updateSection(section, key string, value interface{}) error {
	config, configPath, err := loadOrInitializeUserConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load user config")
	}

	var sec map[string]interface{}
	if s, ok := config[section].(map[string]interface{}); ok {
		sec = s
	} else {
		sec = make(map[string]interface{})
	}

	sec[key] = value
	config[section] = sec

	return saveUserConfig(config, configPath)
}

// UpdateBackupAutoEnabled updates the backup.auto_enabled setting
func UpdateBackupAutoEnabled(enabled bool) error {
	return updateSection("backup", "auto_enabled", enabled)
}

// UpdateBackupFrequency updates the backup.frequency setting
func UpdateBackupFrequency(frequency string) error {
	return updateSection("backup", "frequency", frequency)
}

// UpdateBackupTime updates the backup.time setting
func UpdateBackupTime(hhmm string) error {
	return updateSection("backup", "time", hhmm)
}

// UpdateBackupKeepCount updates the backup.keep_count setting
func UpdateBackupKeepCount(keep int) error {
	return updateSection("backup", "keep_count", keep)
}

// UpdateJobsTimezone updates the jobs.timezone setting
func UpdateJobsTimezone(tz string) error {
	return updateSection("jobs", "timezone", tz)
}
