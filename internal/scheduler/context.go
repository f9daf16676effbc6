package scheduler

import (
	"time"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// Context aggregates every read-only fact one optimization run needs.
// It is assembled fresh per call and never persisted.
type Context struct {
	ClientID      int64
	Plan          models.ClientPlan
	Preference    *models.ClientPreference
	Slots         []models.ScheduleSlot
	Bookings      []models.Booking
	CoachWorkload map[int64]float64
	CoachNames    map[int64]string
	WindowStart   time.Time
	WindowEnd     time.Time
	Now           time.Time
}

// weekdayIndex maps a time to the zero-based Monday..Sunday index used
// by schedule slots.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// weekStart returns midnight on the Monday of t's calendar week.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -weekdayIndex(day))
}

// resolveSlotTime computes the concrete occurrence of a recurring slot:
// the next occurrence of its day-of-week on/after the window start. When
// that lands on the start day itself but the hour has already passed
// relative to now, the occurrence rolls forward one week.
func resolveSlotTime(slot models.ScheduleSlot, windowStart, now time.Time) time.Time {
	daysUntil := (slot.DayOfWeek - weekdayIndex(windowStart) + 7) % 7
	if daysUntil == 0 {
		sameDay := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(),
			slot.StartHour, 0, 0, 0, windowStart.Location())
		if !sameDay.After(now) {
			daysUntil = 7
		}
	}
	date := windowStart.AddDate(0, 0, daysUntil)
	return time.Date(date.Year(), date.Month(), date.Day(),
		slot.StartHour, 0, 0, 0, windowStart.Location())
}

// countBookingsBetween counts non-cancelled bookings in [start, end).
func countBookingsBetween(bookings []models.Booking, start, end time.Time) int {
	count := 0
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		if !b.SessionDate.Before(start) && b.SessionDate.Before(end) {
			count++
		}
	}
	return count
}
