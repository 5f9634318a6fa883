package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/medlinkvn/medlink/db"
	"github.com/medlinkvn/medlink/errors"
	"github.com/medlinkvn/medlink/internal/id"
	"github.com/medlinkvn/medlink/internal/util"
)

// Task is one job's unit of work plus its own schedule.
//
// NextRun computes the next wake-up instant from "now"; Run performs one
// cycle (evaluate, persist) and returns a short human-readable summary
// for the execution record.
type Task interface {
	Name() string
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) (summary string, err error)
}

// LoopConfig contains per-job loop configuration.
type LoopConfig struct {
	// Backoff is the fixed sleep applied after a transient run error
	// before returning to normal scheduling.
	Backoff time.Duration

	// RunOnStart dispatches one execution immediately on loop start,
	// before any delay is computed. Consumed exactly once.
	RunOnStart bool

	// MinInterval is the guard spacing between granted executions.
	// Zero means DefaultMinInterval.
	MinInterval time.Duration

	// DisabledPollInterval is how long to sleep between enablement
	// checks while the job is switched off. Zero means one hour.
	DisabledPollInterval time.Duration

	// Enabled is polled once per iteration; nil means always enabled.
	Enabled func() bool
}

// iteration outcome: the loop models errors as data instead of unwinding,
// so a transient failure can never kill the goroutine.
type result int

const (
	resultContinue result = iota
	resultBackoff
	resultStop
)

// Loop drives one recurring job: compute delay, sleep (cancellable),
// acquire the guard, dispatch the unit of work fire-and-forget, repeat.
//
// Each job kind gets its own Loop instance with its own guard; loops are
// fully independent and never block each other.
type Loop struct {
	task       Task
	cfg        LoopConfig
	guard      *Guard
	clock      Clock
	executions *ExecutionStore // optional, nil disables history
	log        *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // the loop goroutine
	work   sync.WaitGroup // outstanding units of work

	// Failures from dispatched work come back here; the loop converts a
	// pending error into a backoff sleep, waking early from a scheduled
	// sleep if the failure lands mid-wait.
	runErrs chan error

	mu             sync.Mutex
	iterations     int64
	lastDispatchAt time.Time
	ranOnStart     bool
}

// NewLoop creates a loop for the given task. The guard is per-loop state
// injected by the caller; pass nil for a fresh guard. A nil clock uses the
// system clock, a nil executions store disables execution history.
func NewLoop(ctx context.Context, task Task, cfg LoopConfig, guard *Guard, executions *ExecutionStore, clock Clock, log *zap.SugaredLogger) *Loop {
	loopCtx, cancel := context.WithCancel(ctx)

	if guard == nil {
		guard = NewGuard()
	}
	if clock == nil {
		clock = SystemClock()
	}

	return &Loop{
		task:       task,
		cfg:        cfg,
		guard:      guard,
		clock:      clock,
		executions: executions,
		log:        log.Named(task.Name()),
		ctx:        loopCtx,
		cancel:     cancel,
		runErrs:    make(chan error, 1),
	}
}

// Start begins the scheduling loop.
func (l *Loop) Start() {
	l.wg.Add(1)
	go l.run()
	l.log.Infow("Job loop started",
		"job", l.task.Name(),
		"run_on_start", l.cfg.RunOnStart,
		"backoff", l.backoff(),
	)
}

// Stop cancels the loop and waits for the loop goroutine and any
// outstanding unit of work to finish.
func (l *Loop) Stop() {
	l.cancel()
	l.wg.Wait()
	l.work.Wait()
	l.log.Infow("Job loop stopped", "job", l.task.Name())
}

func (l *Loop) backoff() time.Duration {
	if l.cfg.Backoff > 0 {
		return l.cfg.Backoff
	}
	return time.Hour
}

func (l *Loop) minInterval() time.Duration {
	if l.cfg.MinInterval > 0 {
		return l.cfg.MinInterval
	}
	return DefaultMinInterval
}

func (l *Loop) disabledPoll() time.Duration {
	if l.cfg.DisabledPollInterval > 0 {
		return l.cfg.DisabledPollInterval
	}
	return time.Hour
}

// run is the main loop. Terminal state is only reached through
// cancellation; every error path converges back to scheduling.
func (l *Loop) run() {
	defer l.wg.Done()

	for {
		switch l.iterate() {
		case resultStop:
			l.log.Infow("Job loop cancelled, shutting down", "job", l.task.Name())
			return
		case resultBackoff:
			if !l.sleep(l.backoff()) {
				l.log.Infow("Job loop cancelled during backoff", "job", l.task.Name())
				return
			}
		case resultContinue:
		}
	}
}

// iterate performs one scheduling cycle and reports how to proceed.
func (l *Loop) iterate() result {
	l.mu.Lock()
	l.iterations++
	l.mu.Unlock()

	// A failure reported by a previously dispatched unit of work turns
	// into one fixed backoff sleep before normal scheduling resumes.
	select {
	case err := <-l.runErrs:
		l.log.Errorw("Previous run failed, backing off",
			"job", l.task.Name(),
			"error", err,
			"backoff", l.backoff(),
		)
		return resultBackoff
	default:
	}

	if l.cfg.Enabled != nil && !l.cfg.Enabled() {
		l.log.Infow("Job disabled, will poll again",
			"job", l.task.Name(),
			"poll_interval", l.disabledPoll(),
		)
		if !l.sleep(l.disabledPoll()) {
			return resultStop
		}
		return resultContinue
	}

	now := l.clock.Now()

	if l.cfg.RunOnStart && !l.ranOnStart {
		l.ranOnStart = true
		return l.dispatch(now)
	}

	next := l.task.NextRun(now)
	l.log.Infow("Sleeping until next run",
		"job", l.task.Name(),
		"next_run_at", next.Format(time.RFC3339),
		"in", next.Sub(now).Round(time.Second),
	)
	switch l.sleepUntilRun(next.Sub(now)) {
	case resultStop:
		return resultStop
	case resultBackoff:
		return resultBackoff
	}

	return l.dispatch(l.clock.Now())
}

// sleepUntilRun waits out the scheduled delay, but wakes early when a
// previously dispatched unit of work reports a failure. Without the early
// wake-up a weekly job's failure would sit unhandled until the next
// scheduled run.
func (l *Loop) sleepUntilRun(d time.Duration) result {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-l.ctx.Done():
		return resultStop
	case err := <-l.runErrs:
		l.log.Errorw("Run failed, backing off",
			"job", l.task.Name(),
			"error", err,
			"backoff", l.backoff(),
		)
		return resultBackoff
	case <-timer.C:
		return resultContinue
	}
}

// dispatch acquires the guard and spawns the unit of work without waiting
// for it, so a slow run never delays the next schedule computation.
func (l *Loop) dispatch(now time.Time) result {
	if !l.guard.TryAcquire(now, l.minInterval()) {
		l.log.Warnw("Execution suppressed by guard",
			"job", l.task.Name(),
			"last_run_at", l.guard.LastRun().Format(time.RFC3339),
			"min_interval", l.minInterval(),
		)
		return resultContinue
	}

	l.mu.Lock()
	l.lastDispatchAt = now
	l.mu.Unlock()

	startedAt := now.UTC().Format(time.RFC3339)
	execution := &Execution{
		ID:        id.GenerateExecutionID(),
		JobName:   l.task.Name(),
		Status:    ExecutionStatusRunning,
		StartedAt: startedAt,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}

	if l.executions != nil {
		if err := l.executions.CreateExecution(execution); err != nil {
			// Continue anyway - execution tracking is nice-to-have
			l.log.Errorw("Failed to create execution record",
				"job", l.task.Name(),
				"error", err,
			)
		}
	}

	l.work.Add(1)
	go l.runUnit(execution)

	return resultContinue
}

// runUnit executes one cycle of the task's work and records the outcome.
// Runs on its own goroutine, decoupled from the scheduling loop.
func (l *Loop) runUnit(execution *Execution) {
	defer l.work.Done()

	start := time.Now()
	summary, err := l.task.Run(l.ctx)
	completed := time.Now()

	durationMs := int(completed.Sub(start).Milliseconds())
	execution.CompletedAt = util.Ptr(completed.UTC().Format(time.RFC3339))
	execution.DurationMs = &durationMs
	execution.UpdatedAt = completed.UTC().Format(time.RFC3339)

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		// Shutdown raced the run; not a failure.
		execution.Status = ExecutionStatusFailed
		execution.ErrorMessage = util.Ptr(err.Error())
		l.log.Infow("Run interrupted by shutdown",
			"job", l.task.Name(),
			"execution_id", execution.ID,
			"duration_ms", durationMs,
		)
	case err != nil:
		execution.Status = ExecutionStatusFailed
		execution.ErrorMessage = util.Ptr(err.Error())
		l.log.Errorw("Run FAILED",
			"job", l.task.Name(),
			"execution_id", execution.ID,
			"duration_ms", durationMs,
			"error", err,
		)
		// Non-blocking: one pending failure is enough to trigger backoff.
		select {
		case l.runErrs <- err:
		default:
		}
	default:
		execution.Status = ExecutionStatusCompleted
		execution.ResultSummary = &summary
		metrics := GetSystemMetrics()
		l.log.Infow("Run OK",
			"job", l.task.Name(),
			"execution_id", execution.ID,
			"duration_ms", durationMs,
			"summary", summary,
			"mem_used_gb", metrics.MemoryUsedGB,
			"mem_percent", metrics.MemoryPercent,
		)
	}

	if l.executions != nil {
		if err := l.executions.UpdateExecution(execution); err != nil {
			if db.IsDatabaseClosed(err) {
				// Shutdown closed the database before this unit finished.
				l.log.Infow("Skipping execution record update, database closed",
					"execution_id", execution.ID,
				)
			} else {
				l.log.Errorw("Failed to update execution record",
					"execution_id", execution.ID,
					"error", err,
				)
				// Not critical - continue
			}
		}
	}
}

// sleep waits for d or until the loop is cancelled. Returns false when
// cancelled: a cancellation observed while sleeping is a clean shutdown,
// not an error.
func (l *Loop) sleep(d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-l.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// GetStats returns loop statistics.
func (l *Loop) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"job":              l.task.Name(),
		"iterations":       l.iterations,
		"last_dispatch_at": l.lastDispatchAt,
		"guard_last_run":   l.guard.LastRun(),
	}
}
