package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuardFirstAcquireGranted(t *testing.T) {
	g := NewGuard()
	now := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)

	assert.True(t, g.TryAcquire(now, time.Minute))
	assert.Equal(t, now, g.LastRun())
}

func TestGuardDeniesWithinMinInterval(t *testing.T) {
	g := NewGuard()
	now := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)

	assert.True(t, g.TryAcquire(now, time.Minute))
	assert.False(t, g.TryAcquire(now.Add(30*time.Second), time.Minute))

	// Denied attempts do not advance lastRun.
	assert.Equal(t, now, g.LastRun())

	assert.True(t, g.TryAcquire(now.Add(time.Minute), time.Minute))
	assert.Equal(t, now.Add(time.Minute), g.LastRun())
}

// Two concurrent acquires within the minimum interval: exactly one wins.
func TestGuardMutualExclusion(t *testing.T) {
	g := NewGuard()
	now := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)

	const contenders = 32
	var wg sync.WaitGroup
	granted := make(chan bool, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted <- g.TryAcquire(now, time.Minute)
		}()
	}
	wg.Wait()
	close(granted)

	wins := 0
	for ok := range granted {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}
