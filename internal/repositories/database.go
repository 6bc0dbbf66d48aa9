package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories use. pgx.Tx
// satisfies it too, so a repository rebound with WithTx runs its
// statements inside that transaction; pgxmock pools satisfy it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxDatabase is a Database that can open transactions. The onboarding
// review workflow needs this to commit the status update and the license
// insert as one unit.
type TxDatabase interface {
	Database
	Begin(ctx context.Context) (pgx.Tx, error)
}
