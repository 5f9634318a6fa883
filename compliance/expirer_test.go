package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medlinkvn/medlink/clinic"
)

func TestExpireOverrides(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	batch := []*clinic.ScheduleOverride{
		{ID: "DSO_1", IsAvailable: true},
		{ID: "DSO_2", IsAvailable: true},
	}

	count := ExpireOverrides(batch, now)

	assert.Equal(t, 2, count)
	for _, o := range batch {
		assert.False(t, o.IsAvailable)
		assert.Equal(t, now, o.UpdatedAt)
	}
}

func TestExpireReminders(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	batch := []*clinic.Reminder{{ID: "REM_1", IsPending: true}}

	count := ExpireReminders(batch, now)

	assert.Equal(t, 1, count)
	assert.False(t, batch[0].IsPending)
	assert.Equal(t, now, batch[0].UpdatedAt)
}

func TestExpireEmptyBatchesAreNoOps(t *testing.T) {
	assert.Zero(t, ExpireOverrides(nil, time.Now()))
	assert.Zero(t, ExpireReminders(nil, time.Now()))
}
