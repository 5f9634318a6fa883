package clinic

import "time"

// ScheduleOverride is a date-scoped availability exception created by the
// doctor self-service schedule editor. Once OverrideDate has passed the
// expiry job forces IsAvailable to false.
type ScheduleOverride struct {
	ID           string
	DoctorID     string
	OverrideDate time.Time // date only, midnight local
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reminder is a pending appointment reminder. The daily expiry job flips
// IsPending off once the remind date is in the past.
type Reminder struct {
	ID            string
	AppointmentID string
	RemindDate    time.Time // date only, midnight local
	IsPending     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
