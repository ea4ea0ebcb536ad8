package services

import (
	"context"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/core/engine"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CatalogSvcFacade manages the account catalog and classification rules a user works with.
type CatalogSvcFacade interface {
	// GetCatalog returns the user's catalog, or the configured default when none is saved.
	GetCatalog(ctx context.Context, userID string) (*domain.CatalogDefinition, error)

	// SaveCatalog validates and stores a user catalog.
	SaveCatalog(ctx context.Context, userID string, req dto.SaveCatalogRequest) (*domain.CatalogDefinition, error)

	// ResetCatalog drops the user's customisation so the default applies again.
	ResetCatalog(ctx context.Context, userID string) error

	// Engine builds a categorization engine from the user's catalog at the given rate.
	Engine(ctx context.Context, userID string, rate decimal.Decimal) (*engine.Engine, error)
}
