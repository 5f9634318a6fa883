package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunDaily_BeforeTodayInstant(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyDaily, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunDaily_AfterTodayInstant(t *testing.T) {
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyDaily, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC), got)
}

// If now equals today's run instant exactly, tomorrow is chosen, not today.
func TestNextRunDaily_ExactBoundaryRollsOver(t *testing.T) {
	now := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyDaily, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunWeekly_MidWeek(t *testing.T) {
	// 2025-06-10 is a Tuesday; the following Monday is 2025-06-16.
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyWeekly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 16, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunWeekly_OnMondayBeforeInstant(t *testing.T) {
	now := time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC) // Monday 01:00
	got := NextRun(FrequencyWeekly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 16, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunWeekly_OnMondayAfterInstant(t *testing.T) {
	now := time.Date(2025, 6, 16, 5, 0, 0, 0, time.UTC) // Monday 05:00
	got := NextRun(FrequencyWeekly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 23, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunMonthly(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyMonthly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 7, 1, 2, 0, 0, 0, time.UTC), got)

	// Before the 1st-of-month instant, the current month's is chosen.
	now = time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	got = NextRun(FrequencyMonthly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), got)

	// December rolls into January of the next year.
	now = time.Date(2025, 12, 15, 1, 0, 0, 0, time.UTC)
	got = NextRun(FrequencyMonthly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunTimezoneCorrect(t *testing.T) {
	hanoi, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	// 2025-06-10 20:30 UTC is 2025-06-11 03:30 in Hanoi (UTC+7), so a
	// daily 02:00 Hanoi job next fires 2025-06-12 02:00 local.
	now := time.Date(2025, 6, 10, 20, 30, 0, 0, time.UTC)
	got := NextRun(FrequencyDaily, "02:00", "Asia/Ho_Chi_Minh", now)
	assert.Equal(t, time.Date(2025, 6, 12, 2, 0, 0, 0, hanoi).UTC(), got)
}

func TestNextRunMalformedTimeOfDayDefaultsTo0200(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	for _, bad := range []string{"", "nonsense", "25:00", "12:75", "12"} {
		got := NextRun(FrequencyDaily, bad, "UTC", now)
		assert.Equal(t, time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC), got, "input %q", bad)
	}
}

func TestNextRunUnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyDaily, "02:00", "Mars/Olympus_Mons", now)
	assert.Equal(t, time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC), got)
}

func TestNextRunUnknownFrequencyBehavesLikeDaily(t *testing.T) {
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)
	got := NextRun(Frequency("fortnightly"), "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC), got)
}

// Result is always strictly in the future, across frequencies, times of
// day, and offsets around the trigger instant.
func TestNextRunStrictlyFuture(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, freq := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly} {
		for _, tz := range []string{"UTC", "Asia/Ho_Chi_Minh", "America/New_York"} {
			for hours := 0; hours < 24*14; hours += 3 {
				now := base.Add(time.Duration(hours) * time.Hour)
				got := NextRun(freq, "02:00", tz, now)
				assert.True(t, got.After(now),
					"freq=%s tz=%s now=%s got=%s", freq, tz, now, got)
			}
		}
	}
}

// Weekly results always land on the anchor weekday, monthly on the 1st.
func TestNextRunAnchors(t *testing.T) {
	base := time.Date(2025, 6, 1, 13, 37, 0, 0, time.UTC)
	for days := 0; days < 45; days++ {
		now := base.AddDate(0, 0, days)

		weekly := NextRun(FrequencyWeekly, "02:00", "UTC", now)
		assert.Equal(t, time.Monday, weekly.Weekday(), "now=%s", now)

		monthly := NextRun(FrequencyMonthly, "02:00", "UTC", now)
		assert.Equal(t, 1, monthly.Day(), "now=%s", now)
	}
}

// The scenario pinned in the compliance review: Tuesday 2025-06-10
// 01:00Z, weekly 02:00 UTC, expects the following Monday.
func TestNextRunWeeklyScenario(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	got := NextRun(FrequencyWeekly, "02:00", "UTC", now)
	assert.Equal(t, time.Date(2025, 6, 16, 2, 0, 0, 0, time.UTC), got)
}

func TestNextWeekday(t *testing.T) {
	// 2025-06-10 is a Tuesday.
	tuesday := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	// Thursday 12:00 this week.
	got := NextWeekday(tuesday, time.Thursday, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC), got)

	// On Thursday before noon the same-day instant is chosen.
	thursdayMorning := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	got = NextWeekday(thursdayMorning, time.Thursday, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC), got)

	// On Thursday after noon, skip to next week.
	thursdayAfternoon := time.Date(2025, 6, 12, 13, 0, 0, 0, time.UTC)
	got = NextWeekday(thursdayAfternoon, time.Thursday, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 19, 12, 0, 0, 0, time.UTC), got)

	// Exactly at noon counts as already past.
	thursdayNoon := time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC)
	got = NextWeekday(thursdayNoon, time.Thursday, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 19, 12, 0, 0, 0, time.UTC), got)
}

func TestDaysUntilNextMonday(t *testing.T) {
	// Monday maps to a full week, never zero.
	monday := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysUntilNextMonday(monday))

	tuesday := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, DaysUntilNextMonday(tuesday))

	sunday := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysUntilNextMonday(sunday))
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, FrequencyWeekly, ParseFrequency(" Weekly "))
	assert.Equal(t, FrequencyMonthly, ParseFrequency("monthly"))
	assert.Equal(t, FrequencyDaily, ParseFrequency("daily"))
	assert.Equal(t, FrequencyDaily, ParseFrequency("hourly"))
	assert.Equal(t, FrequencyDaily, ParseFrequency(""))
}
