package schedule

import (
	"sync"
	"time"
)

// DefaultMinInterval is the minimum spacing between two granted executions
// of the same job.
const DefaultMinInterval = time.Minute

// Guard suppresses re-entrant executions of a single job's unit of work.
//
// It is a best-effort, process-local guard: it stops a loop from
// dispatching a new unit of work while the previous one ran within the
// minimum interval, but it does not coordinate across multiple running
// instances of the service. Cross-instance dedup would need a lease in
// the persistence layer.
type Guard struct {
	mu      sync.Mutex
	lastRun time.Time
}

// NewGuard returns a guard that has never granted an execution.
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire grants an execution slot if at least minInterval has elapsed
// since the last granted run. On grant, the last-run timestamp advances to
// now atomically with the check.
func (g *Guard) TryAcquire(now time.Time, minInterval time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastRun.IsZero() && now.Sub(g.lastRun) < minInterval {
		return false
	}
	g.lastRun = now
	return true
}

// LastRun returns the timestamp of the most recently granted execution,
// zero if none has been granted yet.
func (g *Guard) LastRun() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun
}
