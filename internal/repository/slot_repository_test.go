package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

func TestSlotRepositoryListAvailableForClient(t *testing.T) {
	db, mock, cleanup := newBookingMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	weekStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	rows := sqlmock.NewRows([]string{"id", "coach_id", "day_of_week", "start_hour", "capacity", "created_at"}).
		AddRow(1, 1, 0, 10, 3, weekStart).
		AddRow(2, 1, 2, 18, 2, weekStart)
	mock.ExpectQuery("SELECT s.id, s.coach_id, s.day_of_week").
		WithArgs(int64(42), weekStart, weekEnd).
		WillReturnRows(rows)

	slots, err := repo.ListAvailableForClient(context.Background(), 42, weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, int64(2), slots[1].ID)
	assert.Equal(t, 18, slots[1].StartHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newBookingMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	coachID := int64(1)
	day := 3
	rows := sqlmock.NewRows([]string{"id", "coach_id", "day_of_week", "start_hour", "capacity", "created_at"}).
		AddRow(5, 1, 3, 9, 4, time.Now())
	mock.ExpectQuery("SELECT id, coach_id, day_of_week").
		WithArgs(coachID, day).
		WillReturnRows(rows)

	slots, err := repo.List(context.Background(), models.SlotFilter{CoachID: &coachID, DayOfWeek: &day})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 3, slots[0].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}
