package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/machinewatch/internal/credentials/users"
	"github.com/dmitrijs2005/machinewatch/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX and owns the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
