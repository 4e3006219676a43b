// Package repomanager opens the configured storage backend and vends its
// repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection.
type RepositoryManager interface {
	Users() users.Repository

	// RunMigrations brings the schema (or indexes) up to date.
	RunMigrations(ctx context.Context) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}

// seams for tests
var (
	openPostgres = OpenPostgres
	openMongo    = OpenMongo
)

// New opens the backend named by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres, "":
		return openPostgres(ctx, cfg.DatabaseDSN)
	case config.StorageMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
