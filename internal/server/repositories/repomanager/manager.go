package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/grapevine/internal/dbx"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/audiofiles"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	AudioFiles(db dbx.DBTX) audiofiles.Repository
}
