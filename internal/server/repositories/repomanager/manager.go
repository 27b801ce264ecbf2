// Package repomanager vends note repositories for the configured storage and
// runs schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/devnotes/internal/server/repositories/notes"
)

// TxFunc runs against a repository bound to one transaction.
type TxFunc func(ctx context.Context, repo notes.Repository) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Notes() notes.Repository
	// WithTx runs fn atomically with respect to other WithTx calls.
	WithTx(ctx context.Context, fn TxFunc) error
	Close() error
}
