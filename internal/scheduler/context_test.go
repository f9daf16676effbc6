package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// monday is 2026-01-05, a Monday, used as the anchor for time fixtures.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, weekdayIndex(monday))
	assert.Equal(t, 1, weekdayIndex(monday.AddDate(0, 0, 1)))
	assert.Equal(t, 6, weekdayIndex(monday.AddDate(0, 0, 6)))
}

func TestWeekStart(t *testing.T) {
	thursday := monday.AddDate(0, 0, 3).Add(15 * time.Hour)
	assert.Equal(t, monday, weekStart(thursday))
	assert.Equal(t, monday, weekStart(monday))
	sunday := monday.AddDate(0, 0, 6).Add(23 * time.Hour)
	assert.Equal(t, monday, weekStart(sunday))
}

func TestResolveSlotTime(t *testing.T) {
	now := monday.Add(8 * time.Hour)

	tests := []struct {
		name string
		slot models.ScheduleSlot
		want time.Time
	}{
		{
			name: "same day future hour",
			slot: models.ScheduleSlot{DayOfWeek: 0, StartHour: 10},
			want: monday.Add(10 * time.Hour),
		},
		{
			name: "same day passed hour rolls a week",
			slot: models.ScheduleSlot{DayOfWeek: 0, StartHour: 7},
			want: monday.AddDate(0, 0, 7).Add(7 * time.Hour),
		},
		{
			name: "later weekday",
			slot: models.ScheduleSlot{DayOfWeek: 3, StartHour: 18},
			want: monday.AddDate(0, 0, 3).Add(18 * time.Hour),
		},
		{
			name: "weekend slot",
			slot: models.ScheduleSlot{DayOfWeek: 6, StartHour: 9},
			want: monday.AddDate(0, 0, 6).Add(9 * time.Hour),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveSlotTime(tc.slot, now, now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSlotTimeWrapsFromWednesday(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2).Add(9 * time.Hour)
	slot := models.ScheduleSlot{DayOfWeek: 0, StartHour: 10}
	got := resolveSlotTime(slot, wednesday, wednesday)
	assert.Equal(t, monday.AddDate(0, 0, 7).Add(10*time.Hour), got)
}

func TestCountBookingsBetween(t *testing.T) {
	bookings := []models.Booking{
		{SessionDate: monday.Add(10 * time.Hour), Status: models.BookingConfirmed},
		{SessionDate: monday.AddDate(0, 0, 2).Add(11 * time.Hour), Status: models.BookingPending},
		{SessionDate: monday.AddDate(0, 0, 3), Status: models.BookingCancelled},
		{SessionDate: monday.AddDate(0, 0, 9), Status: models.BookingConfirmed},
	}

	weekEnd := monday.AddDate(0, 0, 7)
	assert.Equal(t, 2, countBookingsBetween(bookings, monday, weekEnd))
	assert.Equal(t, 1, countBookingsBetween(bookings, weekEnd, weekEnd.AddDate(0, 0, 7)))
}
