package database

import (
	"context"
	"database/sql"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db *sql.DB
}

// NewSqlDatabase creates a new SqlDatabase.
func NewSqlDatabase(db *sql.DB) *SqlDatabase {
	return &SqlDatabase{db: db}
}

// QueryContext executes a query with a context.
func (s *SqlDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil // *sql.Rows implements Rows
}

// ExecContext executes a query without returning rows.
func (s *SqlDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res, nil // database/sql.Result implements Result
}

// PingContext verifies the connection to the database is alive.
func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SqlDatabase) Close() error { return s.db.Close() }

// Assert that SqlDatabase implements the Database interface.
var _ Database = (*SqlDatabase)(nil)
