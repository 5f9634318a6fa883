package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlinkvn/medlink/internal/id"
	medlinktest "github.com/medlinkvn/medlink/internal/testing"
	"github.com/medlinkvn/medlink/internal/util"
)

func TestExecutionLifecycle(t *testing.T) {
	store := NewExecutionStore(medlinktest.CreateTestDB(t))

	now := time.Now().UTC().Format(time.RFC3339)
	e := &Execution{
		ID:        id.GenerateExecutionID(),
		JobName:   "doctor-ban",
		Status:    ExecutionStatusRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateExecution(e))

	e.Status = ExecutionStatusCompleted
	e.CompletedAt = util.Ptr(now)
	e.DurationMs = util.Ptr(142)
	e.ResultSummary = util.Ptr("evaluated 12 doctors")
	require.NoError(t, store.UpdateExecution(e))

	records, err := store.ListRecentExecutions("doctor-ban", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ExecutionStatusCompleted, records[0].Status)
	assert.Equal(t, 142, *records[0].DurationMs)
}

func TestUpdateExecutionNotFound(t *testing.T) {
	store := NewExecutionStore(medlinktest.CreateTestDB(t))

	e := &Execution{ID: "JEX_missing", Status: ExecutionStatusFailed}
	err := store.UpdateExecution(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRecentExecutionsOrdersNewestFirst(t *testing.T) {
	store := NewExecutionStore(medlinktest.CreateTestDB(t))

	base := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		require.NoError(t, store.CreateExecution(&Execution{
			ID:        id.GenerateExecutionID(),
			JobName:   "override-expiry",
			Status:    ExecutionStatusCompleted,
			StartedAt: at,
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}

	records, err := store.ListRecentExecutions("override-expiry", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].StartedAt > records[1].StartedAt)
}
