package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// BookingRepository reads and writes session bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListRecentByClient returns the client's non-cancelled bookings with
// session dates in [from, to).
func (r *BookingRepository) ListRecentByClient(ctx context.Context, clientID int64, from, to time.Time) ([]models.Booking, error) {
	const query = `SELECT id, client_id, coach_id, slot_id, session_date, status, ai_generated, created_at
		FROM bookings
		WHERE client_id = $1
		  AND session_date >= $2
		  AND session_date < $3
		  AND status <> 'cancelled'
		ORDER BY session_date`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, clientID, from, to); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CoachWorkload counts non-cancelled bookings per coach inside a window.
func (r *BookingRepository) CoachWorkload(ctx context.Context, from, to time.Time) (map[int64]float64, error) {
	const query = `SELECT coach_id, COUNT(id) AS booking_count
		FROM bookings
		WHERE session_date >= $1
		  AND session_date < $2
		  AND status <> 'cancelled'
		GROUP BY coach_id`
	rows := []struct {
		CoachID      int64 `db:"coach_id"`
		BookingCount int64 `db:"booking_count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, err
	}
	workload := make(map[int64]float64, len(rows))
	for _, row := range rows {
		workload[row.CoachID] = float64(row.BookingCount)
	}
	return workload, nil
}

// CountActiveAt counts non-cancelled bookings holding the slot occurrence.
// Runs inside the commit transaction for the final availability re-check.
func (r *BookingRepository) CountActiveAt(ctx context.Context, exec sqlx.ExtContext, slotID int64, sessionDate time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings
		WHERE slot_id = $1 AND session_date = $2 AND status <> 'cancelled'`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, slotID, sessionDate); err != nil {
		return 0, err
	}
	return count, nil
}

// CountClientOnDate counts the client's non-cancelled bookings on the
// calendar day of sessionDate.
func (r *BookingRepository) CountClientOnDate(ctx context.Context, exec sqlx.ExtContext, clientID int64, sessionDate time.Time) (int, error) {
	dayStart := time.Date(sessionDate.Year(), sessionDate.Month(), sessionDate.Day(), 0, 0, 0, 0, sessionDate.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	const query = `SELECT COUNT(*) FROM bookings
		WHERE client_id = $1 AND session_date >= $2 AND session_date < $3 AND status <> 'cancelled'`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, clientID, dayStart, dayEnd); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertTx inserts a booking inside an open transaction and fills its id.
// The unique index on (slot_id, session_date, client_id) is the last
// guard against the suggested-versus-booked race.
func (r *BookingRepository) InsertTx(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	const query = `INSERT INTO bookings (client_id, coach_id, slot_id, session_date, status, ai_generated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	return sqlx.GetContext(ctx, exec, &booking.ID, query,
		booking.ClientID, booking.CoachID, booking.SlotID, booking.SessionDate,
		booking.Status, booking.AIGenerated, booking.CreatedAt)
}
