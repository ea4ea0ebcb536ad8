package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
)

// CatalogRepository is an in-memory CatalogRepositoryFacade.
type CatalogRepository struct {
	mu       sync.RWMutex
	catalogs map[string]domain.CatalogDefinition
}

var _ portsrepo.CatalogRepositoryFacade = (*CatalogRepository)(nil)

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{catalogs: make(map[string]domain.CatalogDefinition)}
}

func (r *CatalogRepository) FindCatalogByUser(_ context.Context, userID string) (*domain.CatalogDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.catalogs[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := copyDefinition(def)
	return &out, nil
}

func (r *CatalogRepository) SaveCatalog(_ context.Context, userID string, def domain.CatalogDefinition, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalogs[userID] = copyDefinition(def)
	return nil
}

func (r *CatalogRepository) DeleteCatalog(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.catalogs, userID)
	return nil
}

func copyDefinition(def domain.CatalogDefinition) domain.CatalogDefinition {
	out := domain.CatalogDefinition{
		Categories:      slices.Clone(def.Categories),
		Rules:           make([]domain.ClassificationRule, len(def.Rules)),
		DefaultCategory: def.DefaultCategory,
	}
	for i, rule := range def.Rules {
		rule.Keywords = slices.Clone(rule.Keywords)
		out.Rules[i] = rule
	}
	return out
}
