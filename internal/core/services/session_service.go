package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/core/engine"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/platform/analytics"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// sessionService implements the SessionSvcFacade interface.
//
// Edits of one session's working set are serialised by a per-session mutex; reads see whatever
// the repository last stored.
type sessionService struct {
	BaseService
	sessionRepo portsrepo.SessionRepositoryFacade
	catalogSvc  portssvc.CatalogSvcFacade
	defaultRate decimal.Decimal
	tracker     analytics.Tracker
	now         func() time.Time
	newID       func() string

	locks sessionLocks
}

// SessionServiceOption is a functional option for configuring the session service
type SessionServiceOption func(*sessionService)

// WithDefaultGSTRate sets the rate new sessions get when the request names none.
func WithDefaultGSTRate(rate decimal.Decimal) SessionServiceOption {
	return func(s *sessionService) {
		s.defaultRate = rate
	}
}

// WithTracker sets the product analytics tracker.
func WithTracker(tracker analytics.Tracker) SessionServiceOption {
	return func(s *sessionService) {
		if tracker != nil {
			s.tracker = tracker
		}
	}
}

// WithClock overrides the time source used for audit timestamps and export file names.
func WithClock(now func() time.Time) SessionServiceOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// WithIDGenerator overrides how session and transaction ids are minted.
func WithIDGenerator(newID func() string) SessionServiceOption {
	return func(s *sessionService) {
		s.newID = newID
	}
}

// NewSessionService creates a new session service with the provided options
func NewSessionService(repo portsrepo.SessionRepositoryFacade, catalogSvc portssvc.CatalogSvcFacade, options ...SessionServiceOption) portssvc.SessionSvcFacade {
	svc := &sessionService{
		sessionRepo: repo,
		catalogSvc:  catalogSvc,
		defaultRate: accounting.DefaultGSTRate,
		tracker:     analytics.Nop{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure sessionService implements the SessionSvcFacade interface
var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

// lock serialises edits of one session and returns the unlock func.
func (s *sessionService) lock(sessionID string) func() {
	return s.locks.acquire(sessionID)
}

// loadOwned fetches a session and checks that userID owns it.
func (s *sessionService) loadOwned(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("session " + sessionID)
		}
		s.LogError(ctx, err, "Failed to find session", slog.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session.UserID != userID {
		s.LogWarn(ctx, "User attempted to access another user's session",
			slog.String("session_id", sessionID),
			slog.String("user_id", userID))
		return nil, fmt.Errorf("%w: session %s belongs to another user", apperrors.ErrForbidden, sessionID)
	}
	return session, nil
}

func (s *sessionService) CreateSession(ctx context.Context, userID string, req dto.CreateSessionRequest) (*domain.Session, error) {
	start, err := parseOptionalDate(req.PeriodStart, "periodStart")
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.PeriodEnd, "periodEnd")
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperrors.NewValidationFailedError("periodEnd is before periodStart")
	}

	rate := s.defaultRate
	if req.GSTRate != nil {
		rate = *req.GSTRate
	}
	if err := accounting.ValidateRate(rate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := s.now().UTC()
	session := domain.Session{
		SessionID:   s.newID(),
		UserID:      userID,
		ClientName:  req.ClientName,
		PeriodStart: start,
		PeriodEnd:   end,
		GSTRate:     rate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
		s.LogError(ctx, err, "Failed to save session", slog.String("client_name", req.ClientName))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.LogInfo(ctx, "Session created",
		slog.String("session_id", session.SessionID),
		slog.String("gst_rate", rate.String()))
	s.tracker.Track(userID, "session_created", map[string]any{"session_id": session.SessionID})
	return &session, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	return s.loadOwned(ctx, sessionID, userID)
}

func (s *sessionService) ListSessions(ctx context.Context, userID string, params dto.ListSessionsParams) (*dto.ListSessionsResponse, error) {
	sessions, nextToken, err := s.sessionRepo.ListSessionsByUser(ctx, userID, params.Limit, params.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			s.LogWarn(ctx, "Invalid session page token", slog.String("user_id", userID))
		} else {
			s.LogError(ctx, err, "Failed to list sessions", slog.String("user_id", userID))
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	res := dto.ToListSessionsResponse(sessions, nextToken)
	return &res, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	if _, err := s.loadOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		s.LogError(ctx, err, "Failed to delete session", slog.String("session_id", sessionID))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.LogInfo(ctx, "Session deleted", slog.String("session_id", sessionID))
	return nil
}

func (s *sessionService) ListTransactions(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error) {
	if _, err := s.loadOwned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	txns, err := s.sessionRepo.FindTransactionsBySession(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions", slog.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

// touch records the edit on the session; failure only costs the audit timestamp.
func (s *sessionService) touch(ctx context.Context, sessionID, userID string) {
	if err := s.sessionRepo.TouchSession(ctx, sessionID, userID, s.now().UTC()); err != nil {
		s.LogWarn(ctx, "Failed to update session timestamp",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

func parseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, *value)
	if err != nil {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("%s must be a YYYY-MM-DD date", field))
	}
	return &t, nil
}

// engineFor builds the engine a session's edits and reports run against.
func (s *sessionService) engineFor(ctx context.Context, session *domain.Session) (*engine.Engine, error) {
	eng, err := s.catalogSvc.Engine(ctx, session.UserID, session.GSTRate)
	if err != nil {
		return nil, fmt.Errorf("failed to build categorization engine: %w", err)
	}
	return eng, nil
}
