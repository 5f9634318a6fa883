// Package schedule provides the recurring-job machinery for MedLink:
// next-run-time computation, the single-execution guard, execution history,
// and the per-job scheduling loop.
package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Frequency selects the cadence of a recurring job.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Default run time used when a configured "HH:MM" cannot be parsed.
const (
	defaultRunHour   = 2
	defaultRunMinute = 0
)

// weeklyAnchor is the weekday weekly jobs run on.
const weeklyAnchor = time.Monday

// ParseFrequency normalizes a configured frequency string. Unrecognized
// values behave as daily.
func ParseFrequency(s string) Frequency {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyWeekly:
		return FrequencyWeekly
	case FrequencyMonthly:
		return FrequencyMonthly
	default:
		return FrequencyDaily
	}
}

// parseTimeOfDay parses "HH:MM". Malformed input falls back to 02:00
// rather than failing: a bad config value must never stop a job loop.
func parseTimeOfDay(hhmm string) (hour, minute int) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return defaultRunHour, defaultRunMinute
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return defaultRunHour, defaultRunMinute
	}
	return h, m
}

// loadLocation resolves a timezone identifier. Resolution failure is
// non-fatal: the computation falls back to UTC.
func loadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// NextRun computes the next wake-up instant (UTC) for a recurring job.
//
// The run instant is constructed in local wall-clock time for the given
// timezone and converted back to UTC, so a "02:00 Asia/Ho_Chi_Minh" job
// fires at 02:00 Hanoi time year-round.
//
// The same-day comparison is strict: if nowUTC equals today's run instant
// exactly, the next occurrence is chosen, never today's.
func NextRun(freq Frequency, timeOfDay string, tz string, nowUTC time.Time) time.Time {
	hour, minute := parseTimeOfDay(timeOfDay)
	loc := loadLocation(tz)
	local := nowUTC.In(loc)

	switch freq {
	case FrequencyWeekly:
		return nextWeeklyRun(local, hour, minute, nowUTC, loc)
	case FrequencyMonthly:
		return nextMonthlyRun(local, hour, minute, nowUTC, loc)
	default:
		return nextDailyRun(local, hour, minute, nowUTC, loc)
	}
}

func nextDailyRun(local time.Time, hour, minute int, nowUTC time.Time, loc *time.Location) time.Time {
	today := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if nowUTC.Before(today) {
		return today.UTC()
	}
	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	return tomorrow.UTC()
}

func nextWeeklyRun(local time.Time, hour, minute int, nowUTC time.Time, loc *time.Location) time.Time {
	if local.Weekday() == weeklyAnchor {
		// Same same-day/next-week logic as daily, anchored to the
		// weekly anchor day.
		today := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
		if nowUTC.Before(today) {
			return today.UTC()
		}
		nextWeek := time.Date(local.Year(), local.Month(), local.Day()+7, hour, minute, 0, 0, loc)
		return nextWeek.UTC()
	}

	days := (int(weeklyAnchor) - int(local.Weekday()) + 7) % 7
	target := time.Date(local.Year(), local.Month(), local.Day()+days, hour, minute, 0, 0, loc)
	return target.UTC()
}

func nextMonthlyRun(local time.Time, hour, minute int, nowUTC time.Time, loc *time.Location) time.Time {
	first := time.Date(local.Year(), local.Month(), 1, hour, minute, 0, 0, loc)
	if nowUTC.Before(first) {
		return first.UTC()
	}
	nextMonth := time.Date(local.Year(), local.Month()+1, 1, hour, minute, 0, 0, loc)
	return nextMonth.UTC()
}

// NextWeekday computes the next occurrence of the given weekday at
// hour:minute in loc, strictly after nowUTC. If today is the target
// weekday but the trigger instant has already passed (or is exactly now),
// the occurrence one week out is returned.
//
// The compliance jobs use this for their fixed weekday triggers.
func NextWeekday(nowUTC time.Time, weekday time.Weekday, hour, minute int, loc *time.Location) time.Time {
	local := nowUTC.In(loc)
	days := (int(weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days, hour, minute, 0, 0, loc)
	if !nowUTC.Before(candidate) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+days+7, hour, minute, 0, 0, loc)
	}
	return candidate.UTC()
}

// DaysUntilNextMonday returns the number of days from the given local time
// until the next Monday, mapping "today is Monday" to a full week (7).
// Ban windows always start on a future Monday, never today.
func DaysUntilNextMonday(local time.Time) int {
	days := (int(time.Monday) - int(local.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return days
}
