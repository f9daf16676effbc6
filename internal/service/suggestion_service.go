package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	"github.com/Basel6/Private-Coach-Web-App/internal/repository"
	"github.com/Basel6/Private-Coach-Web-App/internal/scheduler"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

type planReader interface {
	GetByClient(ctx context.Context, clientID int64) (*models.ClientPlan, error)
}

type preferenceReader interface {
	GetByClient(ctx context.Context, clientID int64) (*models.ClientPreference, error)
}

type availableSlotReader interface {
	ListAvailableForClient(ctx context.Context, clientID int64, weekStart, weekEnd time.Time) ([]models.ScheduleSlot, error)
}

type bookingReader interface {
	ListRecentByClient(ctx context.Context, clientID int64, from, to time.Time) ([]models.Booking, error)
	CoachWorkload(ctx context.Context, from, to time.Time) (map[int64]float64, error)
}

type coachNameResolver interface {
	CoachNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// SuggestionConfig governs suggestion service behaviour.
type SuggestionConfig struct {
	SessionTTL         time.Duration
	DefaultFlexibility int
	MaxFlexibility     int
	WeightsVersion     string
}

// SuggestionService wraps the optimization engine with context assembly
// and the token-based suggestion-session lifecycle.
type SuggestionService struct {
	plans     planReader
	prefs     preferenceReader
	slots     availableSlotReader
	bookings  bookingReader
	users     coachNameResolver
	sessions  repository.SessionStore
	engine    *scheduler.Engine
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SuggestionConfig
	now       func() time.Time
}

// NewSuggestionService wires suggestion dependencies.
func NewSuggestionService(
	plans planReader,
	prefs preferenceReader,
	slots availableSlotReader,
	bookings bookingReader,
	users coachNameResolver,
	sessions repository.SessionStore,
	engine *scheduler.Engine,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SuggestionConfig,
) *SuggestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.DefaultFlexibility <= 0 {
		cfg.DefaultFlexibility = 7
	}
	if cfg.MaxFlexibility <= 0 {
		cfg.MaxFlexibility = 14
	}
	if cfg.WeightsVersion == "" {
		cfg.WeightsVersion = "v1"
	}
	return &SuggestionService{
		plans:     plans,
		prefs:     prefs,
		slots:     slots,
		bookings:  bookings,
		users:     users,
		sessions:  sessions,
		engine:    engine,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Suggest runs a fresh optimization and, on success, opens a suggestion
// session pinning the result to a token.
func (s *SuggestionService) Suggest(ctx context.Context, req dto.SuggestRequest) (*dto.SuggestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	numSessions := req.NumSessions
	if numSessions == 0 {
		numSessions = 1
	}
	flexibility := s.clampFlexibility(req.DaysFlexibility)

	start := s.now()
	var preferredDate *time.Time
	if req.PreferredDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.PreferredDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "preferredDate must be formatted YYYY-MM-DD")
		}
		preferredDate = &parsed
		if parsed.After(start) {
			start = parsed
		}
	}

	sctx, err := s.buildContext(ctx, req.ClientID, start, flexibility)
	if err != nil {
		return nil, err
	}

	result := s.engine.Suggest(*sctx, numSessions, nil)
	s.recordOutcome(result)

	resp := s.toResponse("", result)
	if !result.Solved() {
		return resp, nil
	}

	session := &models.SuggestionSession{
		Token:           uuid.NewString(),
		ClientID:        req.ClientID,
		PreferredDate:   preferredDate,
		DaysFlexibility: flexibility,
		NumSessions:     numSessions,
		Suggestions:     result.Suggestions,
		CreatedAt:       s.now(),
		ExpiresAt:       s.now().Add(s.cfg.SessionTTL),
		Active:          true,
	}
	session.FoldHistory()

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store suggestion session")
	}

	s.logger.Info("suggestion session created",
		zap.String("token", session.Token),
		zap.Int64("clientId", req.ClientID),
		zap.String("status", string(result.Status)),
		zap.Int("suggestions", result.Total))

	resp.Token = session.Token
	return resp, nil
}

// ReSuggestAll replaces the full suggestion set, excluding every slot
// the session has ever shown.
func (s *SuggestionService) ReSuggestAll(ctx context.Context, req dto.ReSuggestRequest) (*dto.SuggestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid re-suggestion payload")
	}

	session, err := s.loadOwnedSession(ctx, req.Token, req.ClientID)
	if err != nil {
		return nil, err
	}

	session.FoldHistory()
	excluded := historySet(session.SuggestedHistory)

	start := s.windowStart(session)
	sctx, err := s.buildContext(ctx, session.ClientID, start, session.DaysFlexibility)
	if err != nil {
		return nil, err
	}

	result := s.engine.Suggest(*sctx, session.NumSessions, excluded)
	s.recordOutcome(result)

	session.Suggestions = result.Suggestions
	session.FoldHistory()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suggestion session")
	}

	return s.toResponse(session.Token, result), nil
}

// ReSuggestOne swaps a single suggestion for a fresh alternative. The
// kept suggestions are fed back as synthetic bookings so the replacement
// stays recovery-compliant with them.
func (s *SuggestionService) ReSuggestOne(ctx context.Context, req dto.ReSuggestSlotRequest) (*dto.SuggestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid re-suggestion payload")
	}

	session, err := s.loadOwnedSession(ctx, req.Token, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !session.HasSuggestion(req.SlotID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot is not part of the current suggestions")
	}

	session.FoldHistory()
	excluded := historySet(session.SuggestedHistory)
	excluded[req.SlotID] = struct{}{}

	start := s.windowStart(session)
	sctx, err := s.buildContext(ctx, session.ClientID, start, session.DaysFlexibility)
	if err != nil {
		return nil, err
	}
	for _, kept := range session.Suggestions {
		if kept.SlotID == req.SlotID {
			continue
		}
		when, parseErr := suggestionDateTime(kept)
		if parseErr != nil {
			continue
		}
		sctx.Bookings = append(sctx.Bookings, models.Booking{
			ClientID:    session.ClientID,
			CoachID:     kept.CoachID,
			SlotID:      kept.SlotID,
			SessionDate: when,
			Status:      models.BookingPending,
		})
	}

	result := s.engine.Suggest(*sctx, 1, excluded)
	s.recordOutcome(result)

	if result.Solved() {
		replacement := result.Suggestions[0]
		for i, sg := range session.Suggestions {
			if sg.SlotID == req.SlotID {
				session.Suggestions[i] = replacement
				break
			}
		}
		session.FoldHistory()
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suggestion session")
		}
	}

	return s.toResponse(session.Token, result), nil
}

// Session returns the current state of an owned session.
func (s *SuggestionService) Session(ctx context.Context, token string, clientID int64) (*models.SuggestionSession, error) {
	return s.loadOwnedSession(ctx, token, clientID)
}

func (s *SuggestionService) clampFlexibility(days int) int {
	if days <= 0 {
		return s.cfg.DefaultFlexibility
	}
	if days > s.cfg.MaxFlexibility {
		return s.cfg.MaxFlexibility
	}
	return days
}

func (s *SuggestionService) windowStart(session *models.SuggestionSession) time.Time {
	start := s.now()
	if session.PreferredDate != nil && session.PreferredDate.After(start) {
		start = *session.PreferredDate
	}
	return start
}

// buildContext assembles the read-only scheduling facts for one run.
func (s *SuggestionService) buildContext(ctx context.Context, clientID int64, start time.Time, flexibility int) (*scheduler.Context, error) {
	end := start.AddDate(0, 0, flexibility)

	plan, err := s.plans.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoPlan, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client plan")
	}

	pref, err := s.prefs.GetByClient(ctx, clientID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client preference")
	}

	slots, err := s.slots.ListAvailableForClient(ctx, clientID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available slots")
	}

	bookings, err := s.bookings.ListRecentByClient(ctx, clientID, start.AddDate(0, 0, -7), end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent bookings")
	}

	workload, err := s.bookings.CoachWorkload(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coach workload")
	}
	if _, ok := workload[plan.AssignedCoachID]; !ok {
		workload[plan.AssignedCoachID] = 0
	}

	names := map[int64]string{}
	if s.users != nil {
		ids := coachIDs(slots)
		names, err = s.users.CoachNames(ctx, ids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve coach names")
		}
	}

	return &scheduler.Context{
		ClientID:      clientID,
		Plan:          *plan,
		Preference:    pref,
		Slots:         slots,
		Bookings:      bookings,
		CoachWorkload: workload,
		CoachNames:    names,
		WindowStart:   start,
		WindowEnd:     end,
		Now:           s.now(),
	}, nil
}

// loadOwnedSession fetches a session and enforces expiry, ownership, and
// the active flag.
func (s *SuggestionService) loadOwnedSession(ctx context.Context, token string, clientID int64) (*models.SuggestionSession, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestion session")
	}
	if session.ClientID != clientID {
		return nil, appErrors.Clone(appErrors.ErrSessionAccessDenied, "")
	}
	if session.Expired(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	if !session.Active {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "suggestion session already consumed")
	}
	return session, nil
}

func (s *SuggestionService) recordOutcome(result scheduler.Result) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSolve(string(result.Status), result.SolveTime)
	s.metrics.RecordSuggestionOutcome(string(result.Status), result.Total)
}

func (s *SuggestionService) toResponse(token string, result scheduler.Result) *dto.SuggestResponse {
	currentWeek := &dto.WeekQuota{
		Booked:    result.CurrentWeek.Booked,
		Allowed:   result.CurrentWeek.Allowed,
		Remaining: result.CurrentWeek.Remaining,
	}
	nextWeek := &dto.WeekQuota{
		Booked:    result.NextWeek.Booked,
		Allowed:   result.NextWeek.Allowed,
		Remaining: result.NextWeek.Remaining,
	}
	return &dto.SuggestResponse{
		Token:       token,
		Status:      string(result.Status),
		Confidence:  result.Confidence,
		Requested:   result.Requested,
		Found:       result.Found,
		Suggestions: result.Suggestions,
		Reasons:     result.Reasons,
		Diagnostics: result.Diagnostics,
		CurrentWeek: currentWeek,
		NextWeek:    nextWeek,
		SolveTimeMS: result.SolveTime.Milliseconds(),
		WeightsUsed: s.cfg.WeightsVersion,
	}
}

func historySet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func coachIDs(slots []models.ScheduleSlot) []int64 {
	seen := make(map[int64]struct{}, len(slots))
	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot.CoachID]; ok {
			continue
		}
		seen[slot.CoachID] = struct{}{}
		ids = append(ids, slot.CoachID)
	}
	return ids
}

// suggestionDateTime resolves a suggestion's concrete start instant.
func suggestionDateTime(sg models.Suggestion) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", sg.Date, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return date.Add(time.Duration(sg.StartHour) * time.Hour), nil
}
