package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	"github.com/Basel6/Private-Coach-Web-App/internal/scheduler"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

// serviceMonday anchors every deterministic clock in this package.
var serviceMonday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

type planRepoStub struct {
	plan *models.ClientPlan
	err  error
}

func (s *planRepoStub) GetByClient(_ context.Context, _ int64) (*models.ClientPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

type prefRepoStub struct {
	pref *models.ClientPreference
	err  error
}

func (s *prefRepoStub) GetByClient(_ context.Context, _ int64) (*models.ClientPreference, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pref, nil
}

type slotRepoStub struct {
	slots []models.ScheduleSlot
}

func (s *slotRepoStub) ListAvailableForClient(_ context.Context, _ int64, _, _ time.Time) ([]models.ScheduleSlot, error) {
	return s.slots, nil
}

type bookingRepoStub struct {
	bookings []models.Booking
	workload map[int64]float64
}

func (s *bookingRepoStub) ListRecentByClient(_ context.Context, _ int64, _, _ time.Time) ([]models.Booking, error) {
	return s.bookings, nil
}

func (s *bookingRepoStub) CoachWorkload(_ context.Context, _, _ time.Time) (map[int64]float64, error) {
	if s.workload == nil {
		return map[int64]float64{}, nil
	}
	return s.workload, nil
}

type userRepoStub struct {
	names map[int64]string
}

func (s *userRepoStub) CoachNames(_ context.Context, _ []int64) (map[int64]string, error) {
	return s.names, nil
}

type sessionStoreStub struct {
	items map[string]models.SuggestionSession
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{items: make(map[string]models.SuggestionSession)}
}

func (s *sessionStoreStub) Create(_ context.Context, session *models.SuggestionSession) error {
	s.items[session.Token] = *session
	return nil
}

func (s *sessionStoreStub) Get(_ context.Context, token string) (*models.SuggestionSession, error) {
	session, ok := s.items[token]
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	copied := session
	return &copied, nil
}

func (s *sessionStoreStub) Update(_ context.Context, session *models.SuggestionSession) error {
	if _, ok := s.items[session.Token]; !ok {
		return appErrors.ErrSessionNotFound
	}
	s.items[session.Token] = *session
	return nil
}

func (s *sessionStoreStub) Deactivate(_ context.Context, token string) error {
	session, ok := s.items[token]
	if !ok {
		return appErrors.ErrSessionNotFound
	}
	session.Active = false
	s.items[token] = session
	return nil
}

// serviceWeekSlots builds one slot per day for each given hour, all owned
// by coach 1, ids ascending.
func serviceWeekSlots(hours ...int) []models.ScheduleSlot {
	var slots []models.ScheduleSlot
	id := int64(1)
	for day := 0; day < 7; day++ {
		for _, hour := range hours {
			slots = append(slots, models.ScheduleSlot{
				ID: id, CoachID: 1, DayOfWeek: day, StartHour: hour, Capacity: 3,
			})
			id++
		}
	}
	return slots
}

type suggestionFixture struct {
	svc      *SuggestionService
	sessions *sessionStoreStub
	plans    *planRepoStub
	prefs    *prefRepoStub
	slots    *slotRepoStub
	bookings *bookingRepoStub
}

func newSuggestionFixture() *suggestionFixture {
	plans := &planRepoStub{plan: &models.ClientPlan{
		ID: 1, ClientID: 42, AssignedCoachID: 1, SessionsPerWeek: 3, Active: true,
	}}
	prefs := &prefRepoStub{err: sql.ErrNoRows}
	slots := &slotRepoStub{slots: serviceWeekSlots(10, 11, 12)}
	bookings := &bookingRepoStub{workload: map[int64]float64{1: 0}}
	users := &userRepoStub{names: map[int64]string{1: "Dana Reyes"}}
	sessions := newSessionStoreStub()

	svc := NewSuggestionService(
		plans, prefs, slots, bookings, users, sessions,
		scheduler.New(scheduler.Config{}),
		nil,
		validator.New(),
		zap.NewNop(),
		SuggestionConfig{SessionTTL: time.Hour, DefaultFlexibility: 7, MaxFlexibility: 14, WeightsVersion: "v1"},
	)
	svc.now = func() time.Time { return serviceMonday.Add(8 * time.Hour) }

	return &suggestionFixture{svc: svc, sessions: sessions, plans: plans, prefs: prefs, slots: slots, bookings: bookings}
}

func TestSuggestCreatesSession(t *testing.T) {
	f := newSuggestionFixture()

	resp, err := f.svc.Suggest(context.Background(), dto.SuggestRequest{ClientID: 42, NumSessions: 3})
	require.NoError(t, err)

	assert.Equal(t, string(scheduler.StatusOptimal), resp.Status)
	assert.NotEmpty(t, resp.Token)
	assert.Len(t, resp.Suggestions, 3)
	assert.InDelta(t, 1.0, resp.Confidence, 0.001)
	assert.Equal(t, "v1", resp.WeightsUsed)

	stored, ok := f.sessions.items[resp.Token]
	require.True(t, ok)
	assert.Equal(t, int64(42), stored.ClientID)
	assert.True(t, stored.Active)
	assert.Len(t, stored.SuggestedHistory, 3)
	assert.Equal(t, serviceMonday.Add(9*time.Hour), stored.ExpiresAt)
}

func TestSuggestWithoutPlan(t *testing.T) {
	f := newSuggestionFixture()
	f.plans.plan = nil
	f.plans.err = sql.ErrNoRows

	_, err := f.svc.Suggest(context.Background(), dto.SuggestRequest{ClientID: 42})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoPlan.Code, appErrors.FromError(err).Code)
}

func TestSuggestQuotaExceededOpensNoSession(t *testing.T) {
	f := newSuggestionFixture()
	f.bookings.bookings = []models.Booking{
		{ID: 1, ClientID: 42, CoachID: 1, SlotID: 1, SessionDate: serviceMonday.Add(10 * time.Hour), Status: models.BookingConfirmed},
		{ID: 2, ClientID: 42, CoachID: 1, SlotID: 5, SessionDate: serviceMonday.AddDate(0, 0, 2).Add(10 * time.Hour), Status: models.BookingConfirmed},
		{ID: 3, ClientID: 42, CoachID: 1, SlotID: 9, SessionDate: serviceMonday.AddDate(0, 0, 4).Add(10 * time.Hour), Status: models.BookingPending},
	}

	resp, err := f.svc.Suggest(context.Background(), dto.SuggestRequest{ClientID: 42, NumSessions: 2})
	require.NoError(t, err)

	assert.Equal(t, string(scheduler.StatusQuotaExceeded), resp.Status)
	assert.Empty(t, resp.Token)
	assert.Empty(t, f.sessions.items)
}

func TestSuggestInvalidPayload(t *testing.T) {
	f := newSuggestionFixture()

	_, err := f.svc.Suggest(context.Background(), dto.SuggestRequest{ClientID: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReSuggestAllAvoidsShownSlots(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 3})
	require.NoError(t, err)
	shown := make(map[int64]struct{})
	for _, sg := range first.Suggestions {
		shown[sg.SlotID] = struct{}{}
	}

	second, err := f.svc.ReSuggestAll(ctx, dto.ReSuggestRequest{ClientID: 42, Token: first.Token})
	require.NoError(t, err)
	require.Len(t, second.Suggestions, 3)
	for _, sg := range second.Suggestions {
		_, repeated := shown[sg.SlotID]
		assert.Falsef(t, repeated, "slot %d was suggested twice", sg.SlotID)
	}

	stored := f.sessions.items[first.Token]
	assert.Len(t, stored.SuggestedHistory, 6)
}

func TestReSuggestAllForeignClient(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 2})
	require.NoError(t, err)

	_, err = f.svc.ReSuggestAll(ctx, dto.ReSuggestRequest{ClientID: 7, Token: first.Token})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionAccessDenied.Code, appErrors.FromError(err).Code)
}

func TestReSuggestAllUnknownToken(t *testing.T) {
	f := newSuggestionFixture()

	_, err := f.svc.ReSuggestAll(context.Background(), dto.ReSuggestRequest{ClientID: 42, Token: uuid.NewString()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionNotFound.Code, appErrors.FromError(err).Code)
}

func TestReSuggestAllExpiredSession(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 2})
	require.NoError(t, err)

	stored := f.sessions.items[first.Token]
	stored.ExpiresAt = serviceMonday
	f.sessions.items[first.Token] = stored

	_, err = f.svc.ReSuggestAll(ctx, dto.ReSuggestRequest{ClientID: 42, Token: first.Token})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestReSuggestAllConsumedSession(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 2})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Deactivate(ctx, first.Token))

	_, err = f.svc.ReSuggestAll(ctx, dto.ReSuggestRequest{ClientID: 42, Token: first.Token})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestReSuggestOneReplacesSingleSlot(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 3})
	require.NoError(t, err)
	require.Len(t, first.Suggestions, 3)

	replaced := first.Suggestions[0].SlotID
	kept := []int64{first.Suggestions[1].SlotID, first.Suggestions[2].SlotID}

	resp, err := f.svc.ReSuggestOne(ctx, dto.ReSuggestSlotRequest{ClientID: 42, Token: first.Token, SlotID: replaced})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.NotEqual(t, replaced, resp.Suggestions[0].SlotID)

	stored := f.sessions.items[first.Token]
	require.Len(t, stored.Suggestions, 3)
	current := make(map[int64]struct{}, 3)
	for _, sg := range stored.Suggestions {
		current[sg.SlotID] = struct{}{}
	}
	_, stillThere := current[replaced]
	assert.False(t, stillThere)
	for _, id := range kept {
		_, ok := current[id]
		assert.Truef(t, ok, "kept slot %d disappeared", id)
	}
	assert.Len(t, stored.SuggestedHistory, 4)
}

func TestReSuggestOneRespectsRecoveryAgainstKeptSlots(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 3})
	require.NoError(t, err)

	resp, err := f.svc.ReSuggestOne(ctx, dto.ReSuggestSlotRequest{ClientID: 42, Token: first.Token, SlotID: first.Suggestions[0].SlotID})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)

	replacement, err := time.ParseInLocation("2006-01-02", resp.Suggestions[0].Date, time.UTC)
	require.NoError(t, err)
	replacementAt := replacement.Add(time.Duration(resp.Suggestions[0].StartHour) * time.Hour)

	for _, sg := range first.Suggestions[1:] {
		keptDate, parseErr := time.ParseInLocation("2006-01-02", sg.Date, time.UTC)
		require.NoError(t, parseErr)
		keptAt := keptDate.Add(time.Duration(sg.StartHour) * time.Hour)
		gap := replacementAt.Sub(keptAt)
		if gap < 0 {
			gap = -gap
		}
		assert.GreaterOrEqualf(t, gap, 24*time.Hour, "replacement too close to kept slot %d", sg.SlotID)
	}
}

func TestReSuggestOneSlotNotInCurrentSet(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	first, err := f.svc.Suggest(ctx, dto.SuggestRequest{ClientID: 42, NumSessions: 2})
	require.NoError(t, err)

	_, err = f.svc.ReSuggestOne(ctx, dto.ReSuggestSlotRequest{ClientID: 42, Token: first.Token, SlotID: 999})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSuggestClampsFlexibilityToConfiguredMaximum(t *testing.T) {
	f := newSuggestionFixture()

	resp, err := f.svc.Suggest(context.Background(), dto.SuggestRequest{ClientID: 42, NumSessions: 1, DaysFlexibility: 14})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, 14, f.sessions.items[resp.Token].DaysFlexibility)
}
