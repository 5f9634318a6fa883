package compliance

import (
	"time"

	"github.com/medlinkvn/medlink/clinic"
)

// Reinstater reverses expired temporary bans and applies the carried-over
// miss. Callers select the batch (expired, non-permanent bans only); the
// reinstater mutates it in place.
type Reinstater struct{}

// NewReinstater creates a reinstater.
func NewReinstater() *Reinstater {
	return &Reinstater{}
}

// Reinstate clears each doctor's ban window and re-enables appointment
// acceptance. A doctor carrying a deferred miss starts the new week at a
// count of 1.
//
// The carried-over count is the literal 1, not NextWeekMiss's own value.
// NextWeekMiss is only ever 0 or 1 under the current rules so the
// difference is unobservable; kept as-is pending product clarification.
func (r *Reinstater) Reinstate(doctors []*clinic.Doctor, now time.Time) int {
	for _, d := range doctors {
		if d.NextWeekMiss > 0 {
			d.TotalCaseMissPerWeek = 1
		}
		d.NextWeekMiss = 0
		d.ClearBan()
		d.IsAcceptingAppointments = true
		d.UpdatedAt = now
	}
	return len(doctors)
}
