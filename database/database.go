// Package database abstracts the connection generated statements run on.
// Adapters exist for pgx pools, database/sql and zombiezen sqlite
// connections.
package database

import (
	"context"
)

// Database executes fully rendered SQL text.
type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Rows is a forward-only cursor over a query result.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	Err() error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
