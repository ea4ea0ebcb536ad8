package services

import (
	"context"
	"io"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/export"
)

// SessionReaderSvc defines read operations for reporting sessions
type SessionReaderSvc interface {
	GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	ListSessions(ctx context.Context, userID string, params dto.ListSessionsParams) (*dto.ListSessionsResponse, error)
}

// SessionWriterSvc defines write operations for reporting sessions
type SessionWriterSvc interface {
	CreateSession(ctx context.Context, userID string, req dto.CreateSessionRequest) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID, userID string) error
}

// TransactionReaderSvc defines read operations for a session's working set
type TransactionReaderSvc interface {
	// ListTransactions returns the working set ordered by date, then id.
	ListTransactions(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error)
}

// TransactionWriterSvc defines edits of a session's working set.
// Every edit recomputes GST on the transactions it touches.
type TransactionWriterSvc interface {
	// ImportTransactions classifies and stores rows submitted as JSON.
	ImportTransactions(ctx context.Context, sessionID, userID string, req dto.ImportTransactionsRequest) (*dto.ImportResponse, error)

	// ImportFile decodes a bank CSV or XLSX export, then classifies and stores its rows.
	ImportFile(ctx context.Context, sessionID, userID, filename string, r io.Reader) (*dto.ImportResponse, error)

	UpdateTransaction(ctx context.Context, sessionID, transactionID, userID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, sessionID, transactionID, userID string) error

	// BulkCategorize moves the listed transactions into one category at its default ratio.
	BulkCategorize(ctx context.Context, sessionID, userID string, req dto.BulkCategoryRequest) ([]domain.Transaction, error)

	// BulkSetRatio overrides the claim ratio of the listed transactions.
	BulkSetRatio(ctx context.Context, sessionID, userID string, req dto.BulkRatioRequest) ([]domain.Transaction, error)

	// Reclassify runs the classifier over the whole working set again.
	Reclassify(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error)
}

// ReportSvc defines GST summary and journal generation
type ReportSvc interface {
	GenerateReport(ctx context.Context, sessionID, userID string) (*domain.Report, error)
	ExportJournal(ctx context.Context, sessionID, userID string, format export.Format) (*dto.JournalFile, error)
}

// SessionSvcFacade combines all session-related service interfaces
type SessionSvcFacade interface {
	SessionReaderSvc
	SessionWriterSvc
	TransactionReaderSvc
	TransactionWriterSvc
	ReportSvc
}
