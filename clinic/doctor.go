// Package clinic holds the MedLink clinical records the background jobs
// read and mutate, plus their SQLite persistence.
package clinic

import "time"

// Doctor is the compliance-relevant slice of a doctor record.
//
// The booking flow increments TotalCaseMissPerWeek when a doctor no-shows;
// the compliance engine evaluates and resets it once per week. Ban window
// fields use the zero time.Time as the "not banned" sentinel and are stored
// as NULL.
type Doctor struct {
	ID                      string
	FullName                string
	IsVerified              bool
	TotalCaseMissPerWeek    int
	NextWeekMiss            int // capped at 1, applied at reinstatement
	IsSalaryDeduction       bool
	StartDateBanned         time.Time
	EndDateBanned           time.Time
	TotalBanned             int // lifetime temporary-ban episodes, monotonic
	IsAcceptingAppointments bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Banned reports whether the doctor currently has an active ban window.
func (d *Doctor) Banned() bool {
	return !d.EndDateBanned.IsZero()
}

// ClearBan resets the ban window to the unbanned sentinel.
func (d *Doctor) ClearBan() {
	d.StartDateBanned = time.Time{}
	d.EndDateBanned = time.Time{}
}
