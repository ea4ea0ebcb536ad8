package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	"github.com/SscSPs/gst_return_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxSessionRepository struct {
	BaseRepository
}

func newPgxSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSessionRepository implements portsrepo.SessionRepositoryFacade
var _ portsrepo.SessionRepositoryFacade = (*PgxSessionRepository)(nil)

const sessionSelectQuery = `
SELECT
	s.session_id, s.user_id, s.client_name, s.period_start, s.period_end, s.gst_rate,
	s.created_at, s.created_by, s.last_updated_at, s.last_updated_by
FROM sessions s
`

func scanSession(row pgx.CollectableRow) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.SessionID, &s.UserID, &s.ClientName, &s.PeriodStart, &s.PeriodEnd, &s.GSTRate,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	)
	return s, err
}

func (r *PgxSessionRepository) getSessions(ctx context.Context, filterQuery string, args ...any) ([]domain.Session, error) {
	rows, err := r.Pool.Query(ctx, sessionSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query sessions", err)
	}
	defer rows.Close()

	sessions, err := pgx.CollectRows(rows, scanSession)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect session rows", err)
	}
	return sessions, nil
}

func (r *PgxSessionRepository) SaveSession(ctx context.Context, session domain.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, user_id, client_name, period_start, period_end, gst_rate,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		session.SessionID,
		session.UserID,
		session.ClientName,
		session.PeriodStart,
		session.PeriodEnd,
		session.GSTRate,
		session.CreatedAt,
		session.CreatedBy,
		session.LastUpdatedAt,
		session.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return apperrors.NewConflictError("session " + session.SessionID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save session "+session.SessionID, err)
	}
	return nil
}

func (r *PgxSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	sessions, err := r.getSessions(ctx, `WHERE s.session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &sessions[0], nil
}

// ListSessionsByUser pages through the user's sessions with a (created_at, session_id) keyset cursor.
func (r *PgxSessionRepository) ListSessionsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Session, *string, error) {
	limit = pagination.ClampLimit(limit)
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	filterClause := `WHERE s.user_id = $1`
	args := []any{userID}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		// created_at runs descending and session_id ascending, so no row-value comparison here
		filterClause += ` AND (s.created_at < $2 OR (s.created_at = $2 AND s.session_id > $3))`
		args = append(args, lastCreatedAt, lastID)
	}
	query := filterClause + ` ORDER BY s.created_at DESC, s.session_id LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, fetchLimit)

	sessions, err := r.getSessions(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(sessions) > limit {
		last := sessions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.SessionID)
		nextTokenVal = &token
		sessions = sessions[:limit]
	}
	return sessions, nextTokenVal, nil
}

func (r *PgxSessionRepository) TouchSession(ctx context.Context, sessionID, userID string, at time.Time) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE sessions SET last_updated_at = $2, last_updated_by = $3 WHERE session_id = $1`,
		sessionID, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update session "+sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	// session_transactions rows go with it (ON DELETE CASCADE)
	tag, err := r.Pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete session "+sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSessionRepository) FindTransactionsBySession(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	var rate decimal.Decimal
	err := r.Pool.QueryRow(ctx, `SELECT gst_rate FROM sessions WHERE session_id = $1`, sessionID).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to load session "+sessionID, err)
	}

	query := `
		SELECT transaction_id, txn_date, payee, code, amount, category, gst_ratio
		FROM session_transactions
		WHERE session_id = $1
		ORDER BY txn_date, transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		var (
			id, payee, code, category string
			date                      time.Time
			amount, ratio             decimal.Decimal
		)
		if err := row.Scan(&id, &date, &payee, &code, &amount, &category, &ratio); err != nil {
			return domain.Transaction{}, err
		}
		// gst is recomputed from (amount, ratio, rate) rather than trusted from storage
		t := domain.NewTransaction(id, sessionID, date, payee, code, amount)
		return domain.RestoreTransaction(t, category, ratio, rate)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect transaction rows", err)
	}
	return txns, nil
}

func (r *PgxSessionRepository) SaveTransactions(ctx context.Context, sessionID string, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	query := `
		INSERT INTO session_transactions (
			session_id, transaction_id, txn_date, payee, code, amount, category, gst_ratio, gst_amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range txns {
			batch.Queue(query, sessionID, t.TransactionID, t.Date, t.Payee, t.Code, t.Amount, t.Category(), t.GSTRatio(), t.GSTAmount())
		}
		results := tx.SendBatch(ctx, batch)
		for range txns {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				switch pgErrorCode(err) {
				case uniqueViolation:
					return apperrors.NewConflictError("transaction already exists in session " + sessionID)
				case foreignKeyViolation:
					return apperrors.NewNotFoundError("session " + sessionID)
				}
				return apperrors.NewAppError(500, "failed to save transactions", err)
			}
		}
		return results.Close()
	})
}

func (r *PgxSessionRepository) UpdateTransactions(ctx context.Context, sessionID string, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	query := `
		UPDATE session_transactions
		SET txn_date = $3, payee = $4, code = $5, category = $6, gst_ratio = $7, gst_amount = $8
		WHERE session_id = $1 AND transaction_id = $2;
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range txns {
			batch.Queue(query, sessionID, t.TransactionID, t.Date, t.Payee, t.Code, t.Category(), t.GSTRatio(), t.GSTAmount())
		}
		results := tx.SendBatch(ctx, batch)
		for _, t := range txns {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return apperrors.NewAppError(500, "failed to update transaction "+t.TransactionID, err)
			}
			if tag.RowsAffected() == 0 {
				_ = results.Close()
				return apperrors.NewNotFoundError("transaction " + t.TransactionID)
			}
		}
		return results.Close()
	})
}

func (r *PgxSessionRepository) DeleteTransaction(ctx context.Context, sessionID, transactionID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM session_transactions WHERE session_id = $1 AND transaction_id = $2`,
		sessionID, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return nil
}
