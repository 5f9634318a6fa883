package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medlinkvn/medlink/clinic"
	"github.com/medlinkvn/medlink/errors"
	"github.com/medlinkvn/medlink/schedule"
)

// DefaultTimezone is the clinic's operating timezone, used for ban
// windows and for deciding which calendar day an override belongs to.
const DefaultTimezone = "Asia/Ho_Chi_Minh"

// Weekly trigger instants (local time).
const (
	banTriggerWeekday   = time.Thursday
	banTriggerHour      = 12
	unbanTriggerWeekday = time.Sunday
	unbanTriggerHour    = 14
)

// expiryTimeOfDay is when the daily expiry jobs fire (local time).
const expiryTimeOfDay = "01:00"

// complianceBackoff is the fixed sleep after a failed cycle.
const complianceBackoff = time.Hour

// BanJob runs the weekly compliance evaluation over all verified doctors.
type BanJob struct {
	store  *clinic.Store
	engine *Engine
	clock  schedule.Clock
	loc    *time.Location
	log    *zap.SugaredLogger
}

// NewBanJob creates the weekly ban job.
func NewBanJob(store *clinic.Store, loc *time.Location, clock schedule.Clock, log *zap.SugaredLogger) *BanJob {
	return &BanJob{
		store:  store,
		engine: NewEngine(loc),
		clock:  clock,
		loc:    loc,
		log:    log,
	}
}

func (j *BanJob) Name() string { return "doctor-ban" }

// NextRun targets Thursday noon local time; if that instant has already
// passed today, next week's Thursday is chosen.
func (j *BanJob) NextRun(now time.Time) time.Time {
	return schedule.NextWeekday(now, banTriggerWeekday, banTriggerHour, 0, j.loc)
}

func (j *BanJob) Run(ctx context.Context) (string, error) {
	doctors, err := j.store.ListVerifiedDoctors(ctx)
	if err != nil {
		return "", errors.Wrap(err, "list verified doctors")
	}

	now := j.clock.Now()
	out := j.engine.Evaluate(doctors, now)

	if err := j.store.SaveDoctors(ctx, doctors); err != nil {
		return "", errors.WrapPersistence(err, "save compliance batch")
	}

	j.log.Infow("Weekly compliance cycle complete",
		"evaluated", out.Evaluated,
		"carry_flagged", out.CarryFlagged,
		"salary_deducted", out.SalaryDeducted,
		"temp_banned", out.TempBanned,
		"perm_banned", out.PermBanned,
	)

	return fmt.Sprintf("evaluated %d doctors (%d salary-deducted, %d temp-banned, %d perm-banned)",
		out.Evaluated, out.SalaryDeducted, out.TempBanned, out.PermBanned), nil
}

// LoopConfig returns the scheduling parameters for this job.
func (j *BanJob) LoopConfig() schedule.LoopConfig {
	return schedule.LoopConfig{Backoff: complianceBackoff}
}

// UnbanJob reinstates doctors whose temporary ban window has elapsed.
// Unlike the ban job it evaluates once on startup before its first sleep,
// so a restart never leaves an already-expired ban in place until Sunday.
type UnbanJob struct {
	store      *clinic.Store
	reinstater *Reinstater
	clock      schedule.Clock
	loc        *time.Location
	log        *zap.SugaredLogger
}

// NewUnbanJob creates the weekly reinstatement job.
func NewUnbanJob(store *clinic.Store, loc *time.Location, clock schedule.Clock, log *zap.SugaredLogger) *UnbanJob {
	return &UnbanJob{
		store:      store,
		reinstater: NewReinstater(),
		clock:      clock,
		loc:        loc,
		log:        log,
	}
}

func (j *UnbanJob) Name() string { return "doctor-unban" }

func (j *UnbanJob) NextRun(now time.Time) time.Time {
	return schedule.NextWeekday(now, unbanTriggerWeekday, unbanTriggerHour, 0, j.loc)
}

func (j *UnbanJob) Run(ctx context.Context) (string, error) {
	now := j.clock.Now()

	doctors, err := j.store.ListDoctorsWithExpiredBan(ctx, now)
	if err != nil {
		return "", errors.Wrap(err, "list doctors with expired ban")
	}
	if len(doctors) == 0 {
		j.log.Infow("No expired bans to reinstate")
		return "no expired bans", nil
	}

	count := j.reinstater.Reinstate(doctors, now)

	if err := j.store.SaveDoctors(ctx, doctors); err != nil {
		return "", errors.WrapPersistence(err, "save reinstatement batch")
	}

	j.log.Infow("Reinstated doctors with expired bans", "count", count)
	return fmt.Sprintf("reinstated %d doctors", count), nil
}

func (j *UnbanJob) LoopConfig() schedule.LoopConfig {
	return schedule.LoopConfig{Backoff: complianceBackoff, RunOnStart: true}
}

// OverrideExpiryJob retires date-scoped availability overrides once their
// date has passed in the clinic's timezone.
type OverrideExpiryJob struct {
	store *clinic.Store
	clock schedule.Clock
	loc   *time.Location
	tz    string
	log   *zap.SugaredLogger
}

// NewOverrideExpiryJob creates the daily override expiry job.
func NewOverrideExpiryJob(store *clinic.Store, tz string, clock schedule.Clock, log *zap.SugaredLogger) *OverrideExpiryJob {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return &OverrideExpiryJob{store: store, clock: clock, loc: loc, tz: tz, log: log}
}

func (j *OverrideExpiryJob) Name() string { return "override-expiry" }

func (j *OverrideExpiryJob) NextRun(now time.Time) time.Time {
	return schedule.NextRun(schedule.FrequencyDaily, expiryTimeOfDay, j.tz, now)
}

func (j *OverrideExpiryJob) Run(ctx context.Context) (string, error) {
	now := j.clock.Now()
	today := localDate(now, j.loc)

	overrides, err := j.store.ListExpiredOverrides(ctx, today)
	if err != nil {
		return "", errors.Wrap(err, "list expired overrides")
	}
	if len(overrides) == 0 {
		j.log.Infow("No schedule overrides to expire")
		return "no expired overrides", nil
	}

	count := ExpireOverrides(overrides, now)

	if err := j.store.SaveOverrides(ctx, overrides); err != nil {
		return "", errors.WrapPersistence(err, "save expired overrides")
	}

	j.log.Infow("Expired past-dated schedule overrides", "count", count)
	return fmt.Sprintf("expired %d overrides", count), nil
}

func (j *OverrideExpiryJob) LoopConfig() schedule.LoopConfig {
	return schedule.LoopConfig{Backoff: complianceBackoff}
}

// ReminderExpiryJob retires appointment reminders whose date has passed.
type ReminderExpiryJob struct {
	store *clinic.Store
	clock schedule.Clock
	loc   *time.Location
	tz    string
	log   *zap.SugaredLogger
}

// NewReminderExpiryJob creates the daily reminder expiry job.
func NewReminderExpiryJob(store *clinic.Store, tz string, clock schedule.Clock, log *zap.SugaredLogger) *ReminderExpiryJob {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return &ReminderExpiryJob{store: store, clock: clock, loc: loc, tz: tz, log: log}
}

func (j *ReminderExpiryJob) Name() string { return "reminder-expiry" }

func (j *ReminderExpiryJob) NextRun(now time.Time) time.Time {
	return schedule.NextRun(schedule.FrequencyDaily, expiryTimeOfDay, j.tz, now)
}

func (j *ReminderExpiryJob) Run(ctx context.Context) (string, error) {
	now := j.clock.Now()
	today := localDate(now, j.loc)

	reminders, err := j.store.ListExpiredReminders(ctx, today)
	if err != nil {
		return "", errors.Wrap(err, "list expired reminders")
	}
	if len(reminders) == 0 {
		j.log.Infow("No appointment reminders to expire")
		return "no expired reminders", nil
	}

	count := ExpireReminders(reminders, now)

	if err := j.store.SaveReminders(ctx, reminders); err != nil {
		return "", errors.WrapPersistence(err, "save expired reminders")
	}

	j.log.Infow("Expired stale appointment reminders", "count", count)
	return fmt.Sprintf("expired %d reminders", count), nil
}

func (j *ReminderExpiryJob) LoopConfig() schedule.LoopConfig {
	return schedule.LoopConfig{Backoff: complianceBackoff}
}

// localDate truncates an instant to the calendar day it falls on in loc.
func localDate(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
