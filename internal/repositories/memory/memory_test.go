package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(id, user string, created time.Time) domain.Session {
	return domain.Session{
		SessionID:   id,
		UserID:      user,
		ClientName:  "Client " + id,
		GSTRate:     decimal.RequireFromString("0.15"),
		AuditFields: domain.AuditFields{CreatedAt: created, CreatedBy: user, LastUpdatedAt: created, LastUpdatedBy: user},
	}
}

func txn(id string, day int, amount int64) domain.Transaction {
	return domain.NewTransaction(id, "", time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC), "payee "+id, "", decimal.NewFromInt(amount))
}

func TestSessionRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveSession(ctx, session("a", "u1", t0)))
	require.NoError(t, repo.SaveSession(ctx, session("b", "u1", t0.Add(time.Hour))))
	require.NoError(t, repo.SaveSession(ctx, session("c", "u2", t0)))
	assert.True(t, errors.Is(repo.SaveSession(ctx, session("a", "u1", t0)), apperrors.ErrDuplicate))

	list, next, err := repo.ListSessionsByUser(ctx, "u1", 10, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, next)
	assert.Equal(t, "b", list[0].SessionID, "newest first")

	page, next, err := repo.ListSessionsByUser(ctx, "u1", 1, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.NotNil(t, next)
	assert.Equal(t, "b", page[0].SessionID)
	page, next, err = repo.ListSessionsByUser(ctx, "u1", 1, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, next)
	assert.Equal(t, "a", page[0].SessionID)

	bad := "%%%"
	_, _, err = repo.ListSessionsByUser(ctx, "u1", 1, &bad)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	empty, _, err := repo.ListSessionsByUser(ctx, "nobody", 10, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, repo.TouchSession(ctx, "a", "u1", t0.Add(2*time.Hour)))
	got, err := repo.FindSessionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(2*time.Hour), got.LastUpdatedAt)

	require.NoError(t, repo.DeleteSession(ctx, "a"))
	_, err = repo.FindSessionByID(ctx, "a")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = repo.FindTransactionsBySession(ctx, "a")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.DeleteSession(ctx, "a"), apperrors.ErrNotFound))
}

func TestSessionRepository_CopiesSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s := session("a", "u1", time.Now())
	s.PeriodStart = &start
	require.NoError(t, repo.SaveSession(ctx, s))

	start = start.AddDate(1, 0, 0)
	got, err := repo.FindSessionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.PeriodStart.Year())
}

func TestSessionRepository_Transactions(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.SaveSession(ctx, session("s", "u1", time.Now())))

	require.NoError(t, repo.SaveTransactions(ctx, "s", []domain.Transaction{txn("t2", 3, -10), txn("t1", 3, 5), txn("t0", 9, 1)}))
	err := repo.SaveTransactions(ctx, "s", []domain.Transaction{txn("t3", 1, 1), txn("t1", 1, 1)})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicate))

	list, err := repo.FindTransactionsBySession(ctx, "s")
	require.NoError(t, err)
	require.Len(t, list, 3, "failed batch stores nothing")
	assert.Equal(t, []string{"t1", "t2", "t0"}, []string{list[0].TransactionID, list[1].TransactionID, list[2].TransactionID})
	assert.Equal(t, "s", list[0].SessionID)

	updated, err := list[0].Assign("Sales", decimal.NewFromInt(1), decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateTransactions(ctx, "s", []domain.Transaction{updated}))
	assert.True(t, errors.Is(repo.UpdateTransactions(ctx, "s", []domain.Transaction{txn("zz", 1, 1)}), apperrors.ErrNotFound))

	list, err = repo.FindTransactionsBySession(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Sales", list[0].Category())

	require.NoError(t, repo.DeleteTransaction(ctx, "s", "t2"))
	assert.True(t, errors.Is(repo.DeleteTransaction(ctx, "s", "t2"), apperrors.ErrNotFound))
	list, err = repo.FindTransactionsBySession(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.True(t, errors.Is(repo.SaveTransactions(ctx, "missing", nil), apperrors.ErrNotFound))
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()

	_, err := repo.FindCatalogByUser(ctx, "u1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	def := domain.CatalogDefinition{
		Categories:      []domain.AccountCategory{{Name: "Uncategorized", Type: domain.Expense}},
		Rules:           []domain.ClassificationRule{{Keywords: []string{"x"}, Category: "Uncategorized"}},
		DefaultCategory: "Uncategorized",
	}
	require.NoError(t, repo.SaveCatalog(ctx, "u1", def, time.Now()))
	def.Rules[0].Keywords[0] = "mutated"

	got, err := repo.FindCatalogByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Rules[0].Keywords[0])

	require.NoError(t, repo.DeleteCatalog(ctx, "u1"))
	_, err = repo.FindCatalogByUser(ctx, "u1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
