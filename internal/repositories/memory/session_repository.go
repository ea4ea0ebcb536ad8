// Package memory holds repository implementations that keep everything in process memory.
// They back the service when no database is configured and in tests; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	"github.com/SscSPs/gst_return_app/internal/utils/pagination"
)

// SessionRepository is an in-memory SessionRepositoryFacade, safe for concurrent use.
// Values are copied on the way in and out so callers never share state with the store.
type SessionRepository struct {
	mu           sync.RWMutex
	sessions     map[string]domain.Session
	transactions map[string]map[string]domain.Transaction
}

var _ portsrepo.SessionRepositoryFacade = (*SessionRepository)(nil)

// NewSessionRepository creates an empty store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:     make(map[string]domain.Session),
		transactions: make(map[string]map[string]domain.Transaction),
	}
}

func (r *SessionRepository) SaveSession(_ context.Context, session domain.Session) error {
	if session.SessionID == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.SessionID]; exists {
		return fmt.Errorf("%w: session %s already exists", apperrors.ErrDuplicate, session.SessionID)
	}
	r.sessions[session.SessionID] = copySession(session)
	r.transactions[session.SessionID] = make(map[string]domain.Transaction)
	return nil
}

func (r *SessionRepository) FindSessionByID(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := copySession(s)
	return &out, nil
}

func (r *SessionRepository) ListSessionsByUser(_ context.Context, userID string, limit int, nextToken *string) ([]domain.Session, *string, error) {
	limit = pagination.ClampLimit(limit)
	var (
		afterAt  time.Time
		afterID  string
		hasAfter bool
	)
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
		afterAt, afterID, hasAfter = at, id, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.Session{}
	for _, s := range r.sessions {
		if s.UserID == userID {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return sessionBefore(all[i], all[j]) })

	out := []domain.Session{}
	for _, s := range all {
		if hasAfter && !sessionBefore(domain.Session{SessionID: afterID, AuditFields: domain.AuditFields{CreatedAt: afterAt}}, s) {
			continue
		}
		if len(out) == limit {
			last := out[len(out)-1]
			token := pagination.EncodeToken(last.CreatedAt, last.SessionID)
			return out, &token, nil
		}
		out = append(out, copySession(s))
	}
	return out, nil, nil
}

// sessionBefore orders sessions newest first, then by id.
func sessionBefore(a, b domain.Session) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.SessionID < b.SessionID
}

func (r *SessionRepository) TouchSession(_ context.Context, sessionID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	s.LastUpdatedAt = at
	s.LastUpdatedBy = userID
	r.sessions[sessionID] = s
	return nil
}

func (r *SessionRepository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.sessions, sessionID)
	delete(r.transactions, sessionID)
	return nil
}

func (r *SessionRepository) FindTransactionsBySession(_ context.Context, sessionID string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.transactions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := make([]domain.Transaction, 0, len(set))
	for _, t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	return out, nil
}

func (r *SessionRepository) SaveTransactions(_ context.Context, sessionID string, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.transactions[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	// validate the whole batch first so a failure stores nothing
	seen := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		if _, exists := set[t.TransactionID]; exists {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, t.TransactionID)
		}
		if _, dup := seen[t.TransactionID]; dup {
			return fmt.Errorf("%w: transaction %s repeated in batch", apperrors.ErrDuplicate, t.TransactionID)
		}
		seen[t.TransactionID] = struct{}{}
	}
	for _, t := range txns {
		t.SessionID = sessionID
		set[t.TransactionID] = t
	}
	return nil
}

func (r *SessionRepository) UpdateTransactions(_ context.Context, sessionID string, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.transactions[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, t := range txns {
		if _, exists := set[t.TransactionID]; !exists {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, t.TransactionID)
		}
	}
	for _, t := range txns {
		t.SessionID = sessionID
		set[t.TransactionID] = t
	}
	return nil
}

func (r *SessionRepository) DeleteTransaction(_ context.Context, sessionID, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.transactions[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if _, exists := set[transactionID]; !exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	delete(set, transactionID)
	return nil
}

func copySession(s domain.Session) domain.Session {
	s.PeriodStart = copyTime(s.PeriodStart)
	s.PeriodEnd = copyTime(s.PeriodEnd)
	return s
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
