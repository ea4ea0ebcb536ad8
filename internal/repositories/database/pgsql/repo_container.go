package pgsql

import (
	portsrepo "github.com/SscSPs/gst_return_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository to the same pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		SessionRepo: newPgxSessionRepository(dbPool),
		CatalogRepo: newPgxCatalogRepository(dbPool),
	}
}
