package compliance

import (
	"time"

	"github.com/medlinkvn/medlink/clinic"
)

// ExpireOverrides marks a batch of past-dated schedule overrides
// unavailable. Callers select the batch (date strictly before today,
// still available); running it again on the same data is a no-op because
// the selection comes up empty.
func ExpireOverrides(overrides []*clinic.ScheduleOverride, now time.Time) int {
	for _, o := range overrides {
		o.IsAvailable = false
		o.UpdatedAt = now
	}
	return len(overrides)
}

// ExpireReminders marks a batch of past-dated appointment reminders as no
// longer pending.
func ExpireReminders(reminders []*clinic.Reminder, now time.Time) int {
	for _, r := range reminders {
		r.IsPending = false
		r.UpdatedAt = now
	}
	return len(reminders)
}
