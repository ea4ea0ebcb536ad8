package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/core/engine"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/ingest"
)

func (s *sessionService) ImportTransactions(ctx context.Context, sessionID, userID string, req dto.ImportTransactionsRequest) (*dto.ImportResponse, error) {
	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]ingest.Row, 0, len(req.Rows))
	var skipped []dto.ImportRowError
	for i, r := range req.Rows {
		line := i + 1
		date, err := time.Parse(dto.DateLayout, r.Date)
		if err != nil {
			skipped = append(skipped, dto.ImportRowError{Line: line, Error: fmt.Sprintf("invalid date %q", r.Date)})
			continue
		}
		rows = append(rows, ingest.Row{
			Line:     line,
			Date:     date,
			Payee:    r.Payee,
			Code:     r.Code,
			Amount:   r.Amount,
			Category: r.Category,
			GSTRatio: r.GSTRatio,
		})
	}
	return s.importRows(ctx, session, userID, "", rows, skipped)
}

func (s *sessionService) ImportFile(ctx context.Context, sessionID, userID, filename string, r io.Reader) (*dto.ImportResponse, error) {
	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	result, err := ingest.Decode(filename, r)
	if err != nil {
		s.LogWarn(ctx, "Rejected bank file",
			slog.String("session_id", sessionID),
			slog.String("filename", filename),
			slog.String("reason", err.Error()))
		return nil, err
	}

	skipped := make([]dto.ImportRowError, 0, len(result.Errors))
	for _, rowErr := range result.Errors {
		skipped = append(skipped, dto.ImportRowError{Line: rowErr.Line, Error: rowErr.Err.Error()})
	}
	s.LogDebug(ctx, "Bank file decoded",
		slog.String("layout", string(result.Layout)),
		slog.Int("rows", len(result.Rows)),
		slog.Int("row_errors", len(result.Errors)))
	return s.importRows(ctx, session, userID, string(result.Layout), result.Rows, skipped)
}

// importRows classifies decoded rows and appends them to the session's working set.
func (s *sessionService) importRows(ctx context.Context, session *domain.Session, userID, layout string, rows []ingest.Row, skipped []dto.ImportRowError) (*dto.ImportResponse, error) {
	eng, err := s.engineFor(ctx, session)
	if err != nil {
		return nil, err
	}

	txns := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t := domain.NewTransaction(s.newID(), session.SessionID, row.Date, row.Payee, row.Code, row.Amount)
		prepared, err := eng.Prepare(t, row.Category, row.GSTRatio)
		if err != nil {
			skipped = append(skipped, dto.ImportRowError{Line: row.Line, Error: err.Error()})
			continue
		}
		txns = append(txns, prepared)
	}

	unlock := s.lock(session.SessionID)
	defer unlock()

	if err := s.sessionRepo.SaveTransactions(ctx, session.SessionID, txns); err != nil {
		s.LogError(ctx, err, "Failed to save imported transactions",
			slog.String("session_id", session.SessionID),
			slog.Int("count", len(txns)))
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}
	if len(txns) > 0 {
		s.touch(ctx, session.SessionID, userID)
	}

	s.LogInfo(ctx, "Transactions imported",
		slog.String("session_id", session.SessionID),
		slog.Int("imported", len(txns)),
		slog.Int("skipped", len(skipped)))
	s.tracker.Track(userID, "transactions_imported", map[string]any{
		"session_id": session.SessionID,
		"layout":     layout,
		"imported":   len(txns),
		"skipped":    len(skipped),
	})

	if skipped == nil {
		skipped = []dto.ImportRowError{}
	}
	return &dto.ImportResponse{
		Layout:       layout,
		Imported:     len(txns),
		Skipped:      skipped,
		Transactions: txns,
	}, nil
}

// editFunc returns the edited working set; it must keep the length and order of txns.
type editFunc func(eng *engine.Engine, txns []domain.Transaction) ([]domain.Transaction, error)

// editWorkingSet loads a session's transactions under its lock, applies edit and stores the
// transactions that changed.
func (s *sessionService) editWorkingSet(ctx context.Context, sessionID, userID, action string, edit editFunc) ([]domain.Transaction, error) {
	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engineFor(ctx, session)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	before, err := s.sessionRepo.FindTransactionsBySession(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions", slog.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	after, err := edit(eng, before)
	if err != nil {
		return nil, err
	}

	changed := changedTransactions(before, after)
	if len(changed) == 0 {
		return after, nil
	}
	if err := s.sessionRepo.UpdateTransactions(ctx, sessionID, changed); err != nil {
		s.LogError(ctx, err, "Failed to store edited transactions",
			slog.String("session_id", sessionID),
			slog.String("action", action))
		return nil, fmt.Errorf("failed to update transactions: %w", err)
	}
	s.touch(ctx, sessionID, userID)

	s.LogInfo(ctx, "Working set edited",
		slog.String("session_id", sessionID),
		slog.String("action", action),
		slog.Int("changed", len(changed)))
	s.tracker.Track(userID, "transactions_"+action, map[string]any{
		"session_id": sessionID,
		"changed":    len(changed),
	})
	return after, nil
}

func changedTransactions(before, after []domain.Transaction) []domain.Transaction {
	var changed []domain.Transaction
	for i, t := range after {
		if i >= len(before) || !sameTransaction(before[i], t) {
			changed = append(changed, t)
		}
	}
	return changed
}

func sameTransaction(a, b domain.Transaction) bool {
	return a.TransactionID == b.TransactionID &&
		a.Date.Equal(b.Date) &&
		a.Payee == b.Payee &&
		a.Code == b.Code &&
		a.Category() == b.Category() &&
		a.GSTRatio().Equal(b.GSTRatio()) &&
		a.GSTAmount().Equal(b.GSTAmount())
}

func (s *sessionService) UpdateTransaction(ctx context.Context, sessionID, transactionID, userID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		return nil, err
	}

	var updated domain.Transaction
	_, err = s.editWorkingSet(ctx, sessionID, userID, "updated", func(eng *engine.Engine, txns []domain.Transaction) ([]domain.Transaction, error) {
		idx := indexOf(txns, transactionID)
		if idx < 0 {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID)
		}

		out := make([]domain.Transaction, len(txns))
		copy(out, txns)
		t := out[idx]
		if date != nil {
			t.Date = *date
		}
		if req.Payee != nil {
			t.Payee = *req.Payee
		}
		if req.Code != nil {
			t.Code = *req.Code
		}
		out[idx] = t

		var err error
		if req.Category != nil {
			if out, err = eng.ApplyOne(out, transactionID, *req.Category); err != nil {
				return nil, err
			}
		}
		if req.GSTRatio != nil {
			if out, err = eng.ApplyRatio(out, []string{transactionID}, *req.GSTRatio); err != nil {
				return nil, err
			}
		}
		updated = out[idx]
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *sessionService) DeleteTransaction(ctx context.Context, sessionID, transactionID, userID string) error {
	if _, err := s.loadOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.sessionRepo.DeleteTransaction(ctx, sessionID, transactionID); err != nil {
		s.LogError(ctx, err, "Failed to delete transaction",
			slog.String("session_id", sessionID),
			slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.touch(ctx, sessionID, userID)
	return nil
}

func (s *sessionService) BulkCategorize(ctx context.Context, sessionID, userID string, req dto.BulkCategoryRequest) ([]domain.Transaction, error) {
	return s.editWorkingSet(ctx, sessionID, userID, "categorized", func(eng *engine.Engine, txns []domain.Transaction) ([]domain.Transaction, error) {
		return eng.ApplyBulk(txns, req.TransactionIDs, req.Category)
	})
}

func (s *sessionService) BulkSetRatio(ctx context.Context, sessionID, userID string, req dto.BulkRatioRequest) ([]domain.Transaction, error) {
	return s.editWorkingSet(ctx, sessionID, userID, "ratio_set", func(eng *engine.Engine, txns []domain.Transaction) ([]domain.Transaction, error) {
		return eng.ApplyRatio(txns, req.TransactionIDs, req.GSTRatio)
	})
}

func (s *sessionService) Reclassify(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error) {
	return s.editWorkingSet(ctx, sessionID, userID, "reclassified", func(eng *engine.Engine, txns []domain.Transaction) ([]domain.Transaction, error) {
		return eng.Reclassify(txns)
	})
}

func indexOf(txns []domain.Transaction, id string) int {
	for i, t := range txns {
		if t.TransactionID == id {
			return i
		}
	}
	return -1
}
