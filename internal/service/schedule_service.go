package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

type slotLister interface {
	List(ctx context.Context, filter models.SlotFilter) ([]models.ScheduleSlot, error)
	Occupancy(ctx context.Context, weekStart, weekEnd time.Time, coachID *int64) ([]models.SlotOccupancy, error)
}

type planWithCoachReader interface {
	GetWithCoach(ctx context.Context, clientID int64) (*models.PlanWithCoach, error)
}

type preferenceStore interface {
	GetByClient(ctx context.Context, clientID int64) (*models.ClientPreference, error)
	Upsert(ctx context.Context, pref *models.ClientPreference) error
}

// ScheduleService serves the supporting read/write surface around the
// suggestion flow: slots, plans, preferences, and occupancy.
type ScheduleService struct {
	slots     slotLister
	plans     planWithCoachReader
	prefs     preferenceStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService wires schedule dependencies.
func NewScheduleService(slots slotLister, plans planWithCoachReader, prefs preferenceStore, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		slots:     slots,
		plans:     plans,
		prefs:     prefs,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// ListSlots returns slots matching the optional filters.
func (s *ScheduleService) ListSlots(ctx context.Context, query dto.SlotQuery) ([]models.ScheduleSlot, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot filter")
	}
	slots, err := s.slots.List(ctx, models.SlotFilter{CoachID: query.CoachID, DayOfWeek: query.DayOfWeek})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return slots, nil
}

// GetPlan returns the client's active plan with the coach's name.
func (s *ScheduleService) GetPlan(ctx context.Context, clientID int64) (*models.PlanWithCoach, error) {
	plan, err := s.plans.GetWithCoach(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoPlan, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client plan")
	}
	return plan, nil
}

// GetPreference returns the client's stored preference, or nil when none
// has been set yet.
func (s *ScheduleService) GetPreference(ctx context.Context, clientID int64) (*models.ClientPreference, error) {
	pref, err := s.prefs.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client preference")
	}
	return pref, nil
}

// UpsertPreference creates or replaces the client's preferred window.
func (s *ScheduleService) UpsertPreference(ctx context.Context, clientID int64, req dto.UpsertPreferenceRequest) (*models.ClientPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if req.PreferredStartHour > req.PreferredEndHour {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preferredStartHour must not be after preferredEndHour")
	}

	pref := &models.ClientPreference{
		ClientID:           clientID,
		PreferredStartHour: req.PreferredStartHour,
		PreferredEndHour:   req.PreferredEndHour,
		IsFlexible:         req.IsFlexible,
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save client preference")
	}

	s.logger.Info("client preference saved",
		zap.Int64("clientId", clientID),
		zap.Int("startHour", req.PreferredStartHour),
		zap.Int("endHour", req.PreferredEndHour),
		zap.Bool("flexible", req.IsFlexible))
	return pref, nil
}

// Occupancy summarises weekly slot utilisation. The window defaults to the
// current Monday-based week when weekStart is omitted.
func (s *ScheduleService) Occupancy(ctx context.Context, query dto.OccupancyQuery) ([]models.SlotOccupancy, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid occupancy filter")
	}

	var weekStart time.Time
	if query.WeekStart != "" {
		parsed, err := time.ParseInLocation("2006-01-02", query.WeekStart, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be formatted YYYY-MM-DD")
		}
		weekStart = parsed
	} else {
		now := s.now().UTC()
		offset := (int(now.Weekday()) + 6) % 7
		weekStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	}
	weekEnd := weekStart.AddDate(0, 0, 7)

	occupancy, err := s.slots.Occupancy(ctx, weekStart, weekEnd, query.CoachID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupancy")
	}
	return occupancy, nil
}
