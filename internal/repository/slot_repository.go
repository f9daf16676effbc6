package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// SlotRepository reads recurring schedule slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListAvailableForClient returns the slots of the client's assigned coach
// that still have free capacity inside the given week window. Capacity is
// checked against non-cancelled bookings only.
func (r *SlotRepository) ListAvailableForClient(ctx context.Context, clientID int64, weekStart, weekEnd time.Time) ([]models.ScheduleSlot, error) {
	const query = `SELECT s.id, s.coach_id, s.day_of_week, s.start_hour, s.capacity, s.created_at
		FROM schedule_slots s
		JOIN client_plans p ON p.assigned_coach_id = s.coach_id
		WHERE p.client_id = $1
		  AND p.active = TRUE
		  AND s.capacity > (
			SELECT COUNT(*) FROM bookings b
			WHERE b.slot_id = s.id
			  AND b.session_date >= $2
			  AND b.session_date < $3
			  AND b.status <> 'cancelled')
		ORDER BY s.day_of_week, s.start_hour, s.id`
	slots := []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, clientID, weekStart, weekEnd); err != nil {
		return nil, err
	}
	return slots, nil
}

// List returns slots matching the optional day/coach filters.
func (r *SlotRepository) List(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error) {
	query := `SELECT id, coach_id, day_of_week, start_hour, capacity, created_at FROM schedule_slots WHERE 1=1`
	args := []interface{}{}
	if filter.CoachID != nil {
		args = append(args, *filter.CoachID)
		query += ` AND coach_id = $1`
	}
	if filter.DayOfWeek != nil {
		args = append(args, *filter.DayOfWeek)
		if len(args) == 1 {
			query += ` AND day_of_week = $1`
		} else {
			query += ` AND day_of_week = $2`
		}
	}
	query += ` ORDER BY day_of_week, start_hour, id`

	slots := []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, err
	}
	return slots, nil
}

// FindByID returns a single slot.
func (r *SlotRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	const query = `SELECT id, coach_id, day_of_week, start_hour, capacity, created_at FROM schedule_slots WHERE id = $1`
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Occupancy summarises per-slot booking counts inside a week window,
// optionally limited to one coach.
func (r *SlotRepository) Occupancy(ctx context.Context, weekStart, weekEnd time.Time, coachID *int64) ([]models.SlotOccupancy, error) {
	query := `SELECT s.id AS slot_id, s.coach_id, s.day_of_week, s.start_hour, s.capacity,
			COUNT(b.id) AS booked
		FROM schedule_slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
			AND b.session_date >= $1
			AND b.session_date < $2
			AND b.status <> 'cancelled'`
	args := []interface{}{weekStart, weekEnd}
	if coachID != nil {
		args = append(args, *coachID)
		query += ` WHERE s.coach_id = $3`
	}
	query += ` GROUP BY s.id, s.coach_id, s.day_of_week, s.start_hour, s.capacity
		ORDER BY s.day_of_week, s.start_hour, s.id`

	occupancy := []models.SlotOccupancy{}
	if err := r.db.SelectContext(ctx, &occupancy, query, args...); err != nil {
		return nil, err
	}
	return occupancy, nil
}
