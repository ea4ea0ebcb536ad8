package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/export"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
)

func (s *sessionService) GenerateReport(ctx context.Context, sessionID, userID string) (*domain.Report, error) {
	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, session)
}

func (s *sessionService) generate(ctx context.Context, session *domain.Session) (*domain.Report, error) {
	eng, err := s.engineFor(ctx, session)
	if err != nil {
		return nil, err
	}
	txns, err := s.sessionRepo.FindTransactionsBySession(ctx, session.SessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions", slog.String("session_id", session.SessionID))
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	report, err := eng.Aggregate(txns)
	if err != nil {
		s.LogError(ctx, err, "Generated journal does not balance",
			slog.String("session_id", session.SessionID),
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()))
		return nil, apperrors.NewAppError(500, "journal does not balance", err)
	}

	for _, w := range report.Warnings {
		ratios := make([]string, len(w.Ratios))
		for i, r := range w.Ratios {
			ratios[i] = r.String()
		}
		s.LogWarn(ctx, "Category carries more than one GST ratio",
			slog.String("session_id", session.SessionID),
			slog.String("category", w.Category),
			slog.String("ratios", strings.Join(ratios, ",")))
	}
	if len(report.Excluded) > 0 {
		s.LogWarn(ctx, "Transactions left out of the report",
			slog.String("session_id", session.SessionID),
			slog.Int("excluded", len(report.Excluded)))
	}

	s.LogInfo(ctx, "GST report generated",
		slog.String("session_id", session.SessionID),
		slog.Int("transactions", len(txns)),
		slog.String("gst_to_pay", accounting.FormatMoney(report.GSTToPay)))
	return &report, nil
}

func (s *sessionService) ExportJournal(ctx context.Context, sessionID, userID string, format export.Format) (*dto.JournalFile, error) {
	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	report, err := s.generate(ctx, session)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, report.Journal); err != nil {
		s.LogError(ctx, err, "Failed to render journal",
			slog.String("session_id", sessionID),
			slog.String("format", string(format)))
		return nil, apperrors.NewAppError(500, "failed to render journal", err)
	}

	s.tracker.Track(userID, "journal_exported", map[string]any{
		"session_id": sessionID,
		"format":     string(format),
		"rows":       len(report.Journal),
	})
	return &dto.JournalFile{
		FileName:    export.FileName(session.ClientName, s.now(), format),
		ContentType: format.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}
