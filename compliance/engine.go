// Package compliance implements the weekly doctor compliance state
// machine: miss-count evaluation, salary deduction, temporary and
// permanent bans, reinstatement with carry-over, and the daily expiry of
// stale schedule overrides and reminders.
package compliance

import (
	"time"

	"github.com/medlinkvn/medlink/clinic"
	"github.com/medlinkvn/medlink/schedule"
)

// Ban escalation thresholds on the weekly miss counter.
const (
	carryForwardMisses    = 3 // exactly this many misses defers one into next week
	salaryDeductionMisses = 2 // exactly this many misses triggers salary deduction
	banThresholdMisses    = 3 // this many or more misses triggers a ban
	permanentBanEpisodes  = 2 // lifetime ban count at which bans become permanent
	permanentBanYears     = 100
)

// Temporary bans end the following Sunday at this local wall-clock time.
const (
	banEndHour   = 12
	banEndMinute = 59
	banEndSecond = 59
)

// Outcome aggregates per-category counts from one weekly evaluation cycle.
type Outcome struct {
	Evaluated      int
	CarryFlagged   int
	SalaryDeducted int
	TempBanned     int
	PermBanned     int
}

// Engine evaluates doctors' weekly miss counters and mutates their
// ban/salary state in place.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an engine that computes ban windows in the given
// local timezone.
func NewEngine(loc *time.Location) *Engine {
	return &Engine{loc: loc}
}

// Evaluate applies one weekly compliance cycle to the batch.
//
// Every rule is checked against the miss count as it stood at the start
// of the cycle, never against intermediate state, so a doctor with
// exactly 3 misses gets both the carry-forward flag and the ban, but not
// the salary deduction (which fires at exactly 2). The weekly counter is
// reset for every doctor evaluated, whether or not any rule fired.
func (e *Engine) Evaluate(doctors []*clinic.Doctor, now time.Time) Outcome {
	local := now.In(e.loc)
	var out Outcome

	for _, d := range doctors {
		misses := d.TotalCaseMissPerWeek

		if misses == carryForwardMisses {
			d.NextWeekMiss = 1
			out.CarryFlagged++
		}

		if misses == salaryDeductionMisses && !d.IsSalaryDeduction {
			d.IsSalaryDeduction = true
			out.SalaryDeducted++
		}

		if misses >= banThresholdMisses {
			e.applyBan(d, now, local, &out)
		}

		d.TotalCaseMissPerWeek = 0
		d.UpdatedAt = now
		out.Evaluated++
	}

	return out
}

// applyBan opens a ban window starting next Monday. The window runs
// through the following Sunday 12:59:59 local; once a doctor's lifetime
// episode count reaches 2 the window is pushed a century out instead,
// which the reinstatement job's selection horizon never reaches.
func (e *Engine) applyBan(d *clinic.Doctor, now, local time.Time, out *Outcome) {
	days := schedule.DaysUntilNextMonday(local)
	start := time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, e.loc)
	d.StartDateBanned = start.UTC()
	d.TotalBanned++

	if d.TotalBanned >= permanentBanEpisodes {
		d.EndDateBanned = now.AddDate(permanentBanYears, 0, 0)
		out.PermBanned++
	} else {
		end := time.Date(local.Year(), local.Month(), local.Day()+days+6,
			banEndHour, banEndMinute, banEndSecond, 0, e.loc)
		d.EndDateBanned = end.UTC()
		out.TempBanned++
	}

	d.IsAcceptingAppointments = false
}
