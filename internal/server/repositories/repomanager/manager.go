package repomanager

import (
	"context"
	"database/sql"

	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/repositories/categories"
	"github.com/team-dbx/dbx/internal/server/repositories/files"
	"github.com/team-dbx/dbx/internal/server/repositories/resources"
	"github.com/team-dbx/dbx/internal/server/repositories/users"
	"github.com/team-dbx/dbx/internal/server/repositories/versions"
)

// RepositoryManager vends repositories bound to a DBTX, so that services
// can run the same repositories on a *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Categories(db dbx.DBTX) categories.Repository
	Users(db dbx.DBTX) users.Repository
	Resources(db dbx.DBTX) resources.Repository
	Versions(db dbx.DBTX) versions.Repository
	Files(db dbx.DBTX) files.Repository
}
