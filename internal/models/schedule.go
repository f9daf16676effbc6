package models

import "time"

// ScheduleSlot is a recurring weekly opening on a coach's calendar.
// DayOfWeek is zero-based from Monday (0) through Sunday (6).
type ScheduleSlot struct {
	ID        int64     `db:"id" json:"id"`
	CoachID   int64     `db:"coach_id" json:"coach_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartHour int       `db:"start_hour" json:"start_hour"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SlotFilter captures filtering criteria for listing schedule slots.
type SlotFilter struct {
	CoachID   *int64
	DayOfWeek *int
}

// ClientPlan links a client to their assigned coach and weekly quota.
type ClientPlan struct {
	ID              int64     `db:"id" json:"id"`
	ClientID        int64     `db:"client_id" json:"client_id"`
	AssignedCoachID int64     `db:"assigned_coach_id" json:"assigned_coach_id"`
	SessionsPerWeek int       `db:"sessions_per_week" json:"sessions_per_week"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PlanWithCoach is a plan joined with the coach's display name.
type PlanWithCoach struct {
	ClientPlan
	CoachName string `db:"coach_name" json:"coach_name"`
}

// ClientPreference captures a client's preferred training window.
// Hours are in 24h local time; IsFlexible means the window is a soft
// wish rather than a hard requirement.
type ClientPreference struct {
	ID                 int64     `db:"id" json:"id"`
	ClientID           int64     `db:"client_id" json:"client_id"`
	PreferredStartHour int       `db:"preferred_start_hour" json:"preferred_start_hour"`
	PreferredEndHour   int       `db:"preferred_end_hour" json:"preferred_end_hour"`
	IsFlexible         bool      `db:"is_flexible" json:"is_flexible"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// SlotOccupancy summarises how many active bookings a slot holds inside
// a given week window.
type SlotOccupancy struct {
	SlotID    int64 `db:"slot_id" json:"slot_id"`
	CoachID   int64 `db:"coach_id" json:"coach_id"`
	DayOfWeek int   `db:"day_of_week" json:"day_of_week"`
	StartHour int   `db:"start_hour" json:"start_hour"`
	Capacity  int   `db:"capacity" json:"capacity"`
	Booked    int   `db:"booked" json:"booked"`
}
