// Package repomanager wires repositories to a concrete database handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/DmytroLysachenko/safe-vault/internal/dbx"
	"github.com/DmytroLysachenko/safe-vault/internal/server/repositories/users"
)

// RepositoryManager owns the database handle and hands out repositories bound
// to it. Passing a transactional handle from dbx.WithTx yields repositories
// that take part in that transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Users(db dbx.DBTX) users.Repository
}
