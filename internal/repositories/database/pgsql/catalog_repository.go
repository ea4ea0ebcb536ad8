package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxCatalogRepository struct {
	BaseRepository
}

func newPgxCatalogRepository(pool *pgxpool.Pool) *PgxCatalogRepository {
	return &PgxCatalogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCatalogRepository implements portsrepo.CatalogRepositoryFacade
var _ portsrepo.CatalogRepositoryFacade = (*PgxCatalogRepository)(nil)

func (r *PgxCatalogRepository) FindCatalogByUser(ctx context.Context, userID string) (*domain.CatalogDefinition, error) {
	def := domain.CatalogDefinition{}
	err := r.Pool.QueryRow(ctx, `SELECT default_category FROM user_catalogs WHERE user_id = $1`, userID).Scan(&def.DefaultCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to load catalog for user "+userID, err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT name, category_type, gst_ratio, sort_order
		FROM user_catalog_categories
		WHERE user_id = $1
		ORDER BY position;
	`, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query catalog categories", err)
	}
	def.Categories, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountCategory, error) {
		var c domain.AccountCategory
		err := row.Scan(&c.Name, &c.Type, &c.GSTRatio, &c.Order)
		return c, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect catalog categories", err)
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT name, keywords, whole_words, direction, min_amount, max_amount, category
		FROM user_classification_rules
		WHERE user_id = $1
		ORDER BY position;
	`, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query classification rules", err)
	}
	def.Rules, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ClassificationRule, error) {
		var (
			rule     domain.ClassificationRule
			min, max decimal.NullDecimal
		)
		if err := row.Scan(&rule.Name, &rule.Keywords, &rule.WholeWords, &rule.Direction, &min, &max, &rule.Category); err != nil {
			return rule, err
		}
		if min.Valid {
			rule.MinAmount = &min.Decimal
		}
		if max.Valid {
			rule.MaxAmount = &max.Decimal
		}
		return rule, nil
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect classification rules", err)
	}
	return &def, nil
}

func (r *PgxCatalogRepository) SaveCatalog(ctx context.Context, userID string, def domain.CatalogDefinition, at time.Time) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO user_catalogs (user_id, default_category, last_updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET default_category = EXCLUDED.default_category, last_updated_at = EXCLUDED.last_updated_at;
		`, userID, def.DefaultCategory, at)
		batch.Queue(`DELETE FROM user_catalog_categories WHERE user_id = $1`, userID)
		batch.Queue(`DELETE FROM user_classification_rules WHERE user_id = $1`, userID)
		for i, c := range def.Categories {
			batch.Queue(`
				INSERT INTO user_catalog_categories (user_id, position, name, category_type, gst_ratio, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6);
			`, userID, i, c.Name, string(c.Type), c.GSTRatio, c.Order)
		}
		for i, rule := range def.Rules {
			keywords := rule.Keywords
			if keywords == nil {
				keywords = []string{}
			}
			batch.Queue(`
				INSERT INTO user_classification_rules (user_id, position, name, keywords, whole_words, direction, min_amount, max_amount, category)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
			`, userID, i, rule.Name, keywords, rule.WholeWords, string(rule.Direction), nullDecimal(rule.MinAmount), nullDecimal(rule.MaxAmount), rule.Category)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if pgErrorCode(err) == uniqueViolation {
				return apperrors.NewConflictError("duplicate category in catalog")
			}
			return apperrors.NewAppError(500, "failed to save catalog for user "+userID, err)
		}
		return nil
	})
}

func (r *PgxCatalogRepository) DeleteCatalog(ctx context.Context, userID string) error {
	// categories and rules go with it (ON DELETE CASCADE)
	if _, err := r.Pool.Exec(ctx, `DELETE FROM user_catalogs WHERE user_id = $1`, userID); err != nil {
		return apperrors.NewAppError(500, "failed to delete catalog for user "+userID, err)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
