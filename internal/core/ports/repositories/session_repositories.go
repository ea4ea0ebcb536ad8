package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
)

// SessionReader defines read operations for reporting sessions
type SessionReader interface {
	// FindSessionByID returns apperrors.ErrNotFound when the session does not exist.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error)

	// ListSessionsByUser returns a page of the user's sessions, newest first, and a token for the next page (nil on the last page).
	// A malformed nextToken is apperrors.ErrValidation.
	ListSessionsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Session, *string, error)
}

// SessionWriter defines write operations for reporting sessions
type SessionWriter interface {
	SaveSession(ctx context.Context, session domain.Session) error

	// TouchSession records that the session's working set changed.
	TouchSession(ctx context.Context, sessionID, userID string, at time.Time) error

	// DeleteSession removes the session and every transaction in it.
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionTransactionReader defines read operations for a session's working set
type SessionTransactionReader interface {
	// FindTransactionsBySession returns the working set ordered by date, then id.
	FindTransactionsBySession(ctx context.Context, sessionID string) ([]domain.Transaction, error)
}

// SessionTransactionWriter defines write operations for a session's working set
type SessionTransactionWriter interface {
	// SaveTransactions inserts new transactions; an existing id is apperrors.ErrDuplicate.
	SaveTransactions(ctx context.Context, sessionID string, txns []domain.Transaction) error

	// UpdateTransactions replaces stored transactions by id; an unknown id is apperrors.ErrNotFound.
	UpdateTransactions(ctx context.Context, sessionID string, txns []domain.Transaction) error

	DeleteTransaction(ctx context.Context, sessionID, transactionID string) error
}

// SessionRepositoryFacade combines all session-related repository interfaces
type SessionRepositoryFacade interface {
	SessionReader
	SessionWriter
	SessionTransactionReader
	SessionTransactionWriter
}
