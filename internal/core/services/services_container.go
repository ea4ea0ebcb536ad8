package services

import (
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/platform/analytics"
	"github.com/SscSPs/gst_return_app/internal/platform/config"
)

// ContainerOption is a functional option for configuring the service container
type ContainerOption func(*containerOptions)

type containerOptions struct {
	defaultCatalog *domain.CatalogDefinition
	tracker        analytics.Tracker
}

// WithContainerCatalog replaces the built-in default catalog, typically with one loaded from CATALOG_FILE.
func WithContainerCatalog(def domain.CatalogDefinition) ContainerOption {
	return func(o *containerOptions) {
		o.defaultCatalog = &def
	}
}

// WithContainerTracker sets the analytics tracker the services report events to.
func WithContainerTracker(tracker analytics.Tracker) ContainerOption {
	return func(o *containerOptions) {
		o.tracker = tracker
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ContainerOption) *portssvc.ServiceContainer {
	o := containerOptions{tracker: analytics.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}

	catalogOpts := []CatalogServiceOption{WithJournalBankAccount(cfg.BankAccountName)}
	if o.defaultCatalog != nil {
		catalogOpts = append(catalogOpts, WithDefaultCatalog(*o.defaultCatalog))
	}

	container := &portssvc.ServiceContainer{}

	// Session service depends on the catalog service for its engines
	container.Catalog = NewCatalogService(repos.CatalogRepo, catalogOpts...)
	container.Session = NewSessionService(
		repos.SessionRepo,
		container.Catalog,
		WithDefaultGSTRate(cfg.GSTRate),
		WithTracker(o.tracker),
	)

	return container
}
