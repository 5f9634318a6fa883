package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medlinkvn/medlink/errors"
)

type fakeRunner struct {
	createErr  error
	cleanupErr error
	created    int
	cleaned    int
	keepSeen   int
}

func (f *fakeRunner) CreateBackup(ctx context.Context, label, actor string) (*Record, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &Record{ID: "BAK_test", Label: label, Actor: actor, FilePath: "/tmp/b.db", FileSize: 1024}, nil
}

func (f *fakeRunner) CleanupOldBackups(ctx context.Context, keepCount int) (int, error) {
	f.keepSeen = keepCount
	if f.cleanupErr != nil {
		return 0, f.cleanupErr
	}
	f.cleaned++
	return 1, nil
}

func (f *fakeRunner) ListBackups(ctx context.Context) ([]*Record, error) { return nil, nil }

type fakeSettings map[string]interface{}

func (f fakeSettings) GetBool(key string) bool {
	v, _ := f[key].(bool)
	return v
}

func (f fakeSettings) GetString(key string) string {
	v, _ := f[key].(string)
	return v
}

func (f fakeSettings) GetInt(key string) int {
	v, _ := f[key].(int)
	return v
}

func testSettings() fakeSettings {
	return fakeSettings{
		"backup.auto_enabled": true,
		"backup.frequency":    "daily",
		"backup.time":         "02:00",
		"backup.timezone":     "Asia/Ho_Chi_Minh",
		"backup.keep_count":   7,
	}
}

func TestJobRunCreatesAndPrunes(t *testing.T) {
	runner := &fakeRunner{}
	job := NewJob(runner, testSettings(), zap.NewNop().Sugar())

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "created BAK_test, pruned 1", summary)
	assert.Equal(t, 1, runner.created)
	assert.Equal(t, 7, runner.keepSeen)
}

func TestJobRunCreateFailureAbortsCleanup(t *testing.T) {
	runner := &fakeRunner{createErr: errors.Wrap(errors.ErrBackupFailed, "disk full")}
	job := NewJob(runner, testSettings(), zap.NewNop().Sugar())

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsBackupError(err))
	assert.Zero(t, runner.cleaned, "cleanup must not run after a failed creation")
}

func TestJobRunCleanupFailureIsNotFatal(t *testing.T) {
	runner := &fakeRunner{cleanupErr: errors.New("permission denied")}
	job := NewJob(runner, testSettings(), zap.NewNop().Sugar())

	summary, err := job.Run(context.Background())
	require.NoError(t, err, "a failed cleanup never fails the cycle")
	assert.Equal(t, "created BAK_test, cleanup failed", summary)
}

func TestJobNextRunFollowsSettings(t *testing.T) {
	settings := testSettings()
	job := NewJob(&fakeRunner{}, settings, zap.NewNop().Sugar())

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	now := time.Date(2025, 6, 9, 18, 0, 0, 0, time.UTC) // 10th 01:00 local
	next := job.NextRun(now)
	assert.Equal(t, time.Date(2025, 6, 10, 2, 0, 0, 0, loc).UTC(), next)

	// A reload changing the run time applies to the next computation.
	settings["backup.time"] = "05:30"
	next = job.NextRun(now)
	assert.Equal(t, time.Date(2025, 6, 10, 5, 30, 0, 0, loc).UTC(), next)
}

func TestJobLoopConfigGatesOnSetting(t *testing.T) {
	settings := testSettings()
	job := NewJob(&fakeRunner{}, settings, zap.NewNop().Sugar())

	cfg := job.LoopConfig()
	assert.True(t, cfg.RunOnStart)
	assert.Equal(t, 5*time.Minute, cfg.Backoff)
	assert.Zero(t, cfg.DisabledPollInterval, "disabled polling uses the loop's hourly default")
	require.NotNil(t, cfg.Enabled)
	assert.True(t, cfg.Enabled())

	settings["backup.auto_enabled"] = false
	assert.False(t, cfg.Enabled(), "enablement is polled live, not captured at construction")
}
