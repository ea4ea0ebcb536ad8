package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/core/engine"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/platform/catalog"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type catalogService struct {
	BaseService
	catalogRepo       portsrepo.CatalogRepositoryFacade
	defaultDefinition domain.CatalogDefinition
	bankAccount       string
	now               func() time.Time
}

// CatalogServiceOption is a functional option for configuring the catalog service
type CatalogServiceOption func(*catalogService)

// WithDefaultCatalog replaces the built-in catalog served to users without a custom one.
func WithDefaultCatalog(def domain.CatalogDefinition) CatalogServiceOption {
	return func(s *catalogService) {
		s.defaultDefinition = def
	}
}

// WithJournalBankAccount sets the name of the cash leg row in generated journals.
func WithJournalBankAccount(name string) CatalogServiceOption {
	return func(s *catalogService) {
		s.bankAccount = name
	}
}

// WithCatalogClock overrides the time source used for audit timestamps.
func WithCatalogClock(now func() time.Time) CatalogServiceOption {
	return func(s *catalogService) {
		s.now = now
	}
}

// NewCatalogService creates a new catalog service with the provided options
func NewCatalogService(repo portsrepo.CatalogRepositoryFacade, options ...CatalogServiceOption) portssvc.CatalogSvcFacade {
	svc := &catalogService{
		catalogRepo:       repo,
		defaultDefinition: catalog.Default(),
		bankAccount:       engine.DefaultBankAccount,
		now:               time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure catalogService implements the CatalogSvcFacade interface
var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

func (s *catalogService) GetCatalog(ctx context.Context, userID string) (*domain.CatalogDefinition, error) {
	def, err := s.catalogRepo.FindCatalogByUser(ctx, userID)
	if err == nil {
		return def, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load user catalog", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	s.LogDebug(ctx, "No custom catalog, serving default", slog.String("user_id", userID))
	out := s.defaultDefinition
	return &out, nil
}

func (s *catalogService) SaveCatalog(ctx context.Context, userID string, req dto.SaveCatalogRequest) (*domain.CatalogDefinition, error) {
	def := req.ToDefinition()
	if _, err := buildEngine(def, accounting.DefaultGSTRate); err != nil {
		s.LogWarn(ctx, "Rejected invalid catalog", slog.String("user_id", userID), slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.catalogRepo.SaveCatalog(ctx, userID, def, s.now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to save catalog", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	s.LogInfo(ctx, "Catalog saved",
		slog.String("user_id", userID),
		slog.Int("categories", len(def.Categories)),
		slog.Int("rules", len(def.Rules)))
	return &def, nil
}

func (s *catalogService) ResetCatalog(ctx context.Context, userID string) error {
	if err := s.catalogRepo.DeleteCatalog(ctx, userID); err != nil {
		s.LogError(ctx, err, "Failed to reset catalog", slog.String("user_id", userID))
		return fmt.Errorf("failed to reset catalog: %w", err)
	}
	s.LogInfo(ctx, "Catalog reset to default", slog.String("user_id", userID))
	return nil
}

func (s *catalogService) Engine(ctx context.Context, userID string, rate decimal.Decimal) (*engine.Engine, error) {
	def, err := s.GetCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	eng, err := buildEngine(*def, rate, engine.WithBankAccountName(s.bankAccount))
	if err != nil {
		// a stored catalog passed validation when saved, so this is a server fault
		s.LogError(ctx, err, "Stored catalog no longer builds an engine", slog.String("user_id", userID))
		return nil, apperrors.NewAppError(500, "catalog is misconfigured", err)
	}
	return eng, nil
}

func buildEngine(def domain.CatalogDefinition, rate decimal.Decimal, opts ...engine.Option) (*engine.Engine, error) {
	cat, err := def.Catalog()
	if err != nil {
		return nil, err
	}
	return engine.New(cat, def.Rules, rate, opts...)
}
