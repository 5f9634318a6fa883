package backup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medlinkvn/medlink/config"
	"github.com/medlinkvn/medlink/schedule"
)

// Settings keys the backup job reads on every cycle, so a config reload
// takes effect without restarting the daemon.
const (
	settingAutoEnabled = "backup.auto_enabled"
	settingFrequency   = "backup.frequency"
	settingTime        = "backup.time"
	settingTimezone    = "backup.timezone"
	settingKeepCount   = "backup.keep_count"
)

const backupBackoff = 5 * time.Minute

// automatedActor marks records created by the scheduled job rather than
// an operator.
const automatedActor = "system"

// Job is the scheduled automatic-backup task.
type Job struct {
	runner   Runner
	settings config.Settings
	log      *zap.SugaredLogger
}

// NewJob creates the backup job.
func NewJob(runner Runner, settings config.Settings, log *zap.SugaredLogger) *Job {
	return &Job{runner: runner, settings: settings, log: log}
}

func (j *Job) Name() string { return "auto-backup" }

// NextRun derives the trigger from live settings so frequency and time
// edits apply to the very next cycle.
func (j *Job) NextRun(now time.Time) time.Time {
	freq := schedule.ParseFrequency(j.settings.GetString(settingFrequency))
	return schedule.NextRun(freq, j.settings.GetString(settingTime), j.settings.GetString(settingTimezone), now)
}

// Run creates one backup, then prunes old ones. A failed creation aborts
// the cycle; a failed cleanup only warns, the snapshot itself is safe.
func (j *Job) Run(ctx context.Context) (string, error) {
	rec, err := j.runner.CreateBackup(ctx, "scheduled", automatedActor)
	if err != nil {
		return "", err
	}

	j.log.Infow("Database backup created",
		"backup_id", rec.ID,
		"file_path", rec.FilePath,
		"file_size", rec.FileSize,
	)

	keep := j.settings.GetInt(settingKeepCount)
	deleted, err := j.runner.CleanupOldBackups(ctx, keep)
	if err != nil {
		j.log.Warnw("Backup cleanup failed",
			"keep_count", keep,
			"error", err,
		)
		return fmt.Sprintf("created %s, cleanup failed", rec.ID), nil
	}
	if deleted > 0 {
		j.log.Infow("Pruned old backups", "deleted", deleted, "keep_count", keep)
	}

	return fmt.Sprintf("created %s, pruned %d", rec.ID, deleted), nil
}

// LoopConfig gates the loop on the auto_enabled setting; while disabled
// the loop polls the flag at its default hourly interval instead of
// scheduling runs.
func (j *Job) LoopConfig() schedule.LoopConfig {
	return schedule.LoopConfig{
		Backoff:    backupBackoff,
		RunOnStart: true,
		Enabled: func() bool {
			return j.settings.GetBool(settingAutoEnabled)
		},
	}
}
