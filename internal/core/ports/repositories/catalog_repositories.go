package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
)

// CatalogRepositoryFacade stores per-user catalog customisations.
type CatalogRepositoryFacade interface {
	// FindCatalogByUser returns apperrors.ErrNotFound when the user has no custom catalog.
	FindCatalogByUser(ctx context.Context, userID string) (*domain.CatalogDefinition, error)

	// SaveCatalog replaces the user's catalog and rules.
	SaveCatalog(ctx context.Context, userID string, def domain.CatalogDefinition, at time.Time) error

	DeleteCatalog(ctx context.Context, userID string) error
}
