package models

import "time"

// BookingStatus enumerates booking lifecycle states.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a client's reservation of a concrete slot occurrence.
// SessionDate carries the resolved date and start hour of the session.
type Booking struct {
	ID          int64         `db:"id" json:"id"`
	ClientID    int64         `db:"client_id" json:"client_id"`
	CoachID     int64         `db:"coach_id" json:"coach_id"`
	SlotID      int64         `db:"slot_id" json:"slot_id"`
	SessionDate time.Time     `db:"session_date" json:"session_date"`
	Status      BookingStatus `db:"status" json:"status"`
	AIGenerated bool          `db:"ai_generated" json:"ai_generated"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// Active reports whether the booking still occupies its slot occurrence.
func (b Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
