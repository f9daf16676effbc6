package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

type slotListerStub struct {
	slots      []models.ScheduleSlot
	occupancy  []models.SlotOccupancy
	lastFilter models.SlotFilter
	lastStart  time.Time
	lastEnd    time.Time
}

func (s *slotListerStub) List(_ context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error) {
	s.lastFilter = filter
	return s.slots, nil
}

func (s *slotListerStub) Occupancy(_ context.Context, weekStart, weekEnd time.Time, _ *int64) ([]models.SlotOccupancy, error) {
	s.lastStart = weekStart
	s.lastEnd = weekEnd
	return s.occupancy, nil
}

type planWithCoachStub struct {
	plan *models.PlanWithCoach
	err  error
}

func (s *planWithCoachStub) GetWithCoach(_ context.Context, _ int64) (*models.PlanWithCoach, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

type preferenceStoreStub struct {
	pref  *models.ClientPreference
	err   error
	saved *models.ClientPreference
}

func (s *preferenceStoreStub) GetByClient(_ context.Context, _ int64) (*models.ClientPreference, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pref, nil
}

func (s *preferenceStoreStub) Upsert(_ context.Context, pref *models.ClientPreference) error {
	s.saved = pref
	return nil
}

func newScheduleFixture() (*ScheduleService, *slotListerStub, *planWithCoachStub, *preferenceStoreStub) {
	slots := &slotListerStub{}
	plans := &planWithCoachStub{plan: &models.PlanWithCoach{
		ClientPlan: models.ClientPlan{ID: 1, ClientID: 42, AssignedCoachID: 1, SessionsPerWeek: 3, Active: true},
		CoachName:  "Dana Reyes",
	}}
	prefs := &preferenceStoreStub{err: sql.ErrNoRows}
	svc := NewScheduleService(slots, plans, prefs, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return serviceMonday.AddDate(0, 0, 3).Add(15 * time.Hour) } // a Thursday
	return svc, slots, plans, prefs
}

func TestListSlotsForwardsFilter(t *testing.T) {
	svc, slots, _, _ := newScheduleFixture()
	coachID := int64(1)
	day := 2

	_, err := svc.ListSlots(context.Background(), dto.SlotQuery{CoachID: &coachID, DayOfWeek: &day})
	require.NoError(t, err)
	require.NotNil(t, slots.lastFilter.CoachID)
	assert.Equal(t, int64(1), *slots.lastFilter.CoachID)
	require.NotNil(t, slots.lastFilter.DayOfWeek)
	assert.Equal(t, 2, *slots.lastFilter.DayOfWeek)
}

func TestGetPlanMissing(t *testing.T) {
	svc, _, plans, _ := newScheduleFixture()
	plans.plan = nil
	plans.err = sql.ErrNoRows

	_, err := svc.GetPlan(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoPlan.Code, appErrors.FromError(err).Code)
}

func TestGetPreferenceAbsentReturnsNil(t *testing.T) {
	svc, _, _, _ := newScheduleFixture()

	pref, err := svc.GetPreference(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, pref)
}

func TestUpsertPreferenceRejectsInvertedWindow(t *testing.T) {
	svc, _, _, _ := newScheduleFixture()

	_, err := svc.UpsertPreference(context.Background(), 42, dto.UpsertPreferenceRequest{
		PreferredStartHour: 18, PreferredEndHour: 9,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpsertPreferenceStoresWindow(t *testing.T) {
	svc, _, _, prefs := newScheduleFixture()

	pref, err := svc.UpsertPreference(context.Background(), 42, dto.UpsertPreferenceRequest{
		PreferredStartHour: 9, PreferredEndHour: 12, IsFlexible: true,
	})
	require.NoError(t, err)
	require.NotNil(t, prefs.saved)
	assert.Equal(t, int64(42), pref.ClientID)
	assert.Equal(t, 9, prefs.saved.PreferredStartHour)
	assert.Equal(t, 12, prefs.saved.PreferredEndHour)
	assert.True(t, prefs.saved.IsFlexible)
}

func TestOccupancyDefaultsToCurrentWeek(t *testing.T) {
	svc, slots, _, _ := newScheduleFixture()

	_, err := svc.Occupancy(context.Background(), dto.OccupancyQuery{})
	require.NoError(t, err)
	assert.Equal(t, serviceMonday, slots.lastStart)
	assert.Equal(t, serviceMonday.AddDate(0, 0, 7), slots.lastEnd)
}

func TestOccupancyHonoursExplicitWeekStart(t *testing.T) {
	svc, slots, _, _ := newScheduleFixture()

	_, err := svc.Occupancy(context.Background(), dto.OccupancyQuery{WeekStart: "2026-02-02"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), slots.lastStart)
}
