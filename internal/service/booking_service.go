package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	"github.com/Basel6/Private-Coach-Web-App/internal/repository"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type slotFinder interface {
	FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
}

type bookingWriter interface {
	CountActiveAt(ctx context.Context, exec sqlx.ExtContext, slotID int64, sessionDate time.Time) (int, error)
	CountClientOnDate(ctx context.Context, exec sqlx.ExtContext, clientID int64, sessionDate time.Time) (int, error)
	InsertTx(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error
}

// BookingService turns accepted suggestions into persisted bookings.
type BookingService struct {
	db        txProvider
	slots     slotFinder
	bookings  bookingWriter
	sessions  repository.SessionStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService wires booking dependencies.
func NewBookingService(
	db txProvider,
	slots slotFinder,
	bookings bookingWriter,
	sessions repository.SessionStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		db:        db,
		slots:     slots,
		bookings:  bookings,
		sessions:  sessions,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Commit books the chosen suggestions inside one transaction. Capacity
// and same-day conflicts reject individual slots without failing the
// rest; the session is consumed when at least one booking lands.
func (s *BookingService) Commit(ctx context.Context, req dto.CommitBookingsRequest) (*dto.CommitBookingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}

	session, err := s.loadOwnedSession(ctx, req.Token, req.ClientID)
	if err != nil {
		return nil, err
	}

	chosen := make([]models.Suggestion, 0, len(req.SlotIDs))
	for _, slotID := range req.SlotIDs {
		sg, ok := sessionSuggestion(session, slotID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slot is not part of the current suggestions")
		}
		chosen = append(chosen, sg)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open booking transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	results := make([]dto.CommittedBooking, 0, len(chosen))
	committed := 0
	for _, sg := range chosen {
		outcome, commitErr := s.commitOne(ctx, tx, session.ClientID, sg)
		if commitErr != nil {
			return nil, commitErr
		}
		if outcome.Booked {
			committed++
		}
		results = append(results, outcome)
	}

	if committed > 0 {
		if err := tx.Commit(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit bookings")
		}
		if err := s.sessions.Deactivate(ctx, session.Token); err != nil {
			s.logger.Warn("failed to deactivate suggestion session after commit",
				zap.String("token", session.Token), zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCommit(committed, len(results)-committed)
	}
	s.logger.Info("booking commit finished",
		zap.Int64("clientId", req.ClientID),
		zap.Int("committed", committed),
		zap.Int("rejected", len(results)-committed))

	return &dto.CommitBookingsResponse{
		Results:   results,
		Committed: committed,
		Failed:    len(results) - committed,
	}, nil
}

// commitOne re-checks availability inside the transaction and inserts the
// booking. Check failures become per-slot rejections; storage errors abort
// the whole commit.
func (s *BookingService) commitOne(ctx context.Context, tx *sqlx.Tx, clientID int64, sg models.Suggestion) (dto.CommittedBooking, error) {
	outcome := dto.CommittedBooking{SlotID: sg.SlotID, Date: sg.Date}

	slot, err := s.slots.FindByID(ctx, sg.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			outcome.Reason = "slot no longer exists"
			return outcome, nil
		}
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	when, err := suggestionDateTime(sg)
	if err != nil {
		outcome.Reason = "suggestion carries an unreadable date"
		return outcome, nil
	}

	active, err := s.bookings.CountActiveAt(ctx, tx, slot.ID, when)
	if err != nil {
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot occupancy")
	}
	if active >= slot.Capacity {
		outcome.Reason = "slot was filled after the suggestion was made"
		return outcome, nil
	}

	sameDay, err := s.bookings.CountClientOnDate(ctx, tx, clientID, when)
	if err != nil {
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check same-day bookings")
	}
	if sameDay > 0 {
		outcome.Reason = "you already have a session booked that day"
		return outcome, nil
	}

	booking := &models.Booking{
		ClientID:    clientID,
		CoachID:     slot.CoachID,
		SlotID:      slot.ID,
		SessionDate: when,
		Status:      models.BookingPending,
		AIGenerated: true,
	}
	if err := s.bookings.InsertTx(ctx, tx, booking); err != nil {
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert booking")
	}

	outcome.Booked = true
	outcome.BookingID = booking.ID
	return outcome, nil
}

func (s *BookingService) loadOwnedSession(ctx context.Context, token string, clientID int64) (*models.SuggestionSession, error) {
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

func sessionSuggestion(session *models.SuggestionSession, slotID int64) (models.Suggestion, bool) {
	for _, sg := range session.Suggestions {
		if sg.SlotID == slotID {
			return sg, true
		}
	}
	return models.Suggestion{}, false
}
