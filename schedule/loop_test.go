package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medlinkvn/medlink/errors"
	medlinktest "github.com/medlinkvn/medlink/internal/testing"
)

// fakeTask counts runs and schedules itself `interval` from now.
type fakeTask struct {
	name     string
	interval time.Duration
	delay    time.Duration // how long each run takes
	err      error

	mu   sync.Mutex
	runs int
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) NextRun(now time.Time) time.Time {
	return now.Add(f.interval)
}

func (f *fakeTask) Run(ctx context.Context) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	return "ok", f.err
}

func (f *fakeTask) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestLoopRunOnStartExecutesImmediately(t *testing.T) {
	task := &fakeTask{name: "startup", interval: time.Hour}
	loop := NewLoop(context.Background(), task, LoopConfig{RunOnStart: true}, nil, nil, nil, testLogger())

	loop.Start()
	defer loop.Stop()

	assert.Eventually(t, func() bool { return task.runCount() == 1 },
		2*time.Second, 5*time.Millisecond)
}

func TestLoopCancellationDuringSleepIsCleanStop(t *testing.T) {
	task := &fakeTask{name: "sleeper", interval: time.Hour}
	loop := NewLoop(context.Background(), task, LoopConfig{}, nil, nil, nil, testLogger())

	loop.Start()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		loop.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop while sleeping")
	}

	assert.Equal(t, 0, task.runCount(), "no run should fire before the schedule instant")
}

func TestLoopSurvivesRunErrors(t *testing.T) {
	task := &fakeTask{
		name:     "flaky",
		interval: 5 * time.Millisecond,
		err:      errors.New("evaluation blew up"),
	}
	cfg := LoopConfig{
		Backoff:     10 * time.Millisecond,
		MinInterval: time.Nanosecond,
	}
	loop := NewLoop(context.Background(), task, cfg, nil, nil, nil, testLogger())

	loop.Start()
	defer loop.Stop()

	// Errors back the loop off but never kill it.
	assert.Eventually(t, func() bool { return task.runCount() >= 3 },
		2*time.Second, 5*time.Millisecond)
}

func TestLoopFailureInterruptsScheduledSleep(t *testing.T) {
	// The run outlives the dispatch, so its failure lands while the loop
	// is already sleeping toward a run an hour away. The loop must wake
	// for the backoff instead of sitting out the full schedule.
	task := &fakeTask{
		name:     "late-failure",
		interval: time.Hour,
		delay:    20 * time.Millisecond,
		err:      errors.New("persist failed"),
	}
	cfg := LoopConfig{
		RunOnStart:  true,
		Backoff:     10 * time.Millisecond,
		MinInterval: time.Nanosecond,
	}
	loop := NewLoop(context.Background(), task, cfg, nil, nil, nil, testLogger())

	loop.Start()
	defer loop.Stop()

	assert.Eventually(t, func() bool {
		return loop.GetStats()["iterations"].(int64) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoopGuardSuppressesRapidRedispatch(t *testing.T) {
	task := &fakeTask{name: "rapid", interval: 5 * time.Millisecond}
	cfg := LoopConfig{
		MinInterval: time.Hour, // every wake-up after the first is suppressed
	}
	loop := NewLoop(context.Background(), task, cfg, nil, nil, nil, testLogger())

	loop.Start()
	time.Sleep(100 * time.Millisecond)
	loop.Stop()

	assert.Equal(t, 1, task.runCount())
}

func TestLoopDisabledPollsWithoutRunning(t *testing.T) {
	task := &fakeTask{name: "switched-off", interval: time.Millisecond}
	cfg := LoopConfig{
		DisabledPollInterval: 5 * time.Millisecond,
		Enabled:              func() bool { return false },
	}
	loop := NewLoop(context.Background(), task, cfg, nil, nil, nil, testLogger())

	loop.Start()
	time.Sleep(60 * time.Millisecond)
	loop.Stop()

	assert.Equal(t, 0, task.runCount())

	stats := loop.GetStats()
	assert.Greater(t, stats["iterations"].(int64), int64(1), "enablement is polled per iteration")
}

func TestLoopDisabledPollDefaultsToOneHour(t *testing.T) {
	loop := NewLoop(context.Background(), &fakeTask{name: "idle"}, LoopConfig{}, nil, nil, nil, testLogger())
	assert.Equal(t, time.Hour, loop.disabledPoll())
}

func TestLoopRecordsExecutionHistory(t *testing.T) {
	conn := medlinktest.CreateTestDB(t)
	executions := NewExecutionStore(conn)

	task := &fakeTask{name: "audited", interval: time.Hour}
	loop := NewLoop(context.Background(), task, LoopConfig{RunOnStart: true}, nil, executions, nil, testLogger())

	loop.Start()
	require.Eventually(t, func() bool { return task.runCount() == 1 },
		2*time.Second, 5*time.Millisecond)
	loop.Stop()

	records, err := executions.ListRecentExecutions("audited", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ExecutionStatusCompleted, records[0].Status)
	require.NotNil(t, records[0].ResultSummary)
	assert.Equal(t, "ok", *records[0].ResultSummary)
	require.NotNil(t, records[0].DurationMs)
}

func TestLoopRecordsFailedExecution(t *testing.T) {
	conn := medlinktest.CreateTestDB(t)
	executions := NewExecutionStore(conn)

	task := &fakeTask{name: "doomed", interval: time.Hour, err: errors.New("persist failed")}
	loop := NewLoop(context.Background(), task, LoopConfig{RunOnStart: true, Backoff: time.Hour}, nil, executions, nil, testLogger())

	loop.Start()
	require.Eventually(t, func() bool {
		records, err := executions.ListRecentExecutions("doomed", 1)
		return err == nil && len(records) == 1 && records[0].Status == ExecutionStatusFailed
	}, 2*time.Second, 5*time.Millisecond)
	loop.Stop()

	records, err := executions.ListRecentExecutions("doomed", 1)
	require.NoError(t, err)
	require.NotNil(t, records[0].ErrorMessage)
	assert.Contains(t, *records[0].ErrorMessage, "persist failed")
}
