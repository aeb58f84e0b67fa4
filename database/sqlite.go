package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteDatabase implements Database for a single zombiezen sqlite
// connection. Like the connection itself it must not be used from more
// than one goroutine at a time.
type SQLiteDatabase struct {
	conn *sqlite.Conn
}

// NewSQLiteDatabase wraps an open connection.
func NewSQLiteDatabase(conn *sqlite.Conn) *SQLiteDatabase {
	return &SQLiteDatabase{conn: conn}
}

// OpenSQLite opens (and creates if needed) the database file at path.
func OpenSQLite(path string) (*SQLiteDatabase, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLiteDatabase{conn: conn}, nil
}

// Conn returns the underlying connection.
func (s *SQLiteDatabase) Conn() *sqlite.Conn {
	return s.conn
}

// QueryContext prepares query and returns a cursor over its rows. Arguments
// bind positionally.
func (s *SQLiteDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	prev := s.conn.SetInterrupt(ctx.Done())
	stmt, _, err := s.conn.PrepareTransient(strings.TrimSpace(query))
	if err != nil {
		s.conn.SetInterrupt(prev)
		return nil, err
	}
	if err := bindArgs(stmt, args); err != nil {
		stmt.Finalize()
		s.conn.SetInterrupt(prev)
		return nil, err
	}
	return &SQLiteRows{conn: s.conn, stmt: stmt, restore: prev}, nil
}

// ExecContext runs query to completion.
func (s *SQLiteDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	prev := s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(prev)

	err := sqlitex.ExecuteTransient(s.conn, strings.TrimSpace(query), &sqlitex.ExecOptions{Args: args})
	if err != nil {
		return nil, err
	}
	return &SQLiteResult{
		lastInsertID: s.conn.LastInsertRowID(),
		rowsAffected: int64(s.conn.Changes()),
	}, nil
}

// PingContext runs a trivial statement.
func (s *SQLiteDatabase) PingContext(ctx context.Context) error {
	_, err := s.ExecContext(ctx, "SELECT 1")
	return err
}

// Close closes the connection.
func (s *SQLiteDatabase) Close() error {
	return s.conn.Close()
}

func bindArgs(stmt *sqlite.Stmt, args []any) error {
	for i, arg := range args {
		col := i + 1
		switch v := arg.(type) {
		case nil:
			stmt.BindNull(col)
		case string:
			stmt.BindText(col, v)
		case []byte:
			stmt.BindBytes(col, v)
		case bool:
			stmt.BindBool(col, v)
		case int:
			stmt.BindInt64(col, int64(v))
		case int32:
			stmt.BindInt64(col, int64(v))
		case int64:
			stmt.BindInt64(col, v)
		case float64:
			stmt.BindFloat(col, v)
		default:
			return fmt.Errorf("sqlite: unsupported argument type %T", arg)
		}
	}
	return nil
}

// SQLiteRows implements Rows over a prepared statement.
type SQLiteRows struct {
	conn    *sqlite.Conn
	stmt    *sqlite.Stmt
	restore <-chan struct{}
	err     error
	done    bool
	closed  bool
}

// Next steps to the next row.
func (r *SQLiteRows) Next() bool {
	if r.closed || r.done || r.err != nil {
		return false
	}
	hasRow, err := r.stmt.Step()
	if err != nil {
		r.err = err
		return false
	}
	// stepping past the end would restart the statement
	r.done = !hasRow
	return hasRow
}

// Scan converts the current row to driver values and assigns them.
func (r *SQLiteRows) Scan(dest ...any) error {
	if n := r.stmt.ColumnCount(); len(dest) != n {
		return fmt.Errorf("sqlite: expected %d destination arguments in Scan, not %d", n, len(dest))
	}
	for i, d := range dest {
		if err := assign(d, r.value(i)); err != nil {
			return fmt.Errorf("sqlite: column %d (%s): %w", i, r.stmt.ColumnName(i), err)
		}
	}
	return nil
}

func (r *SQLiteRows) value(col int) any {
	switch r.stmt.ColumnType(col) {
	case sqlite.TypeInteger:
		return r.stmt.ColumnInt64(col)
	case sqlite.TypeFloat:
		return r.stmt.ColumnFloat(col)
	case sqlite.TypeText:
		return r.stmt.ColumnText(col)
	case sqlite.TypeBlob:
		buf := make([]byte, r.stmt.ColumnLen(col))
		r.stmt.ColumnBytes(col, buf)
		return buf
	}
	return nil
}

// Columns returns the result column names.
func (r *SQLiteRows) Columns() ([]string, error) {
	names := make([]string, r.stmt.ColumnCount())
	for i := range names {
		names[i] = r.stmt.ColumnName(i)
	}
	return names, nil
}

// Err returns the error that ended iteration, if any.
func (r *SQLiteRows) Err() error {
	return r.err
}

// Close finalizes the statement. It is safe to call more than once.
func (r *SQLiteRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.stmt.Finalize()
	r.conn.SetInterrupt(r.restore)
	return err
}

// assign stores src into dest the way database/sql would for the common
// destination types. Scanner destinations receive src unchanged.
func assign(dest, src any) error {
	switch d := dest.(type) {
	case sql.Scanner:
		return d.Scan(src)
	case *any:
		*d = src
		return nil
	case *string:
		switch s := src.(type) {
		case string:
			*d = s
		case []byte:
			*d = string(s)
		case nil:
			*d = ""
		default:
			*d = fmt.Sprint(s)
		}
		return nil
	case *[]byte:
		switch s := src.(type) {
		case []byte:
			*d = s
		case string:
			*d = []byte(s)
		case nil:
			*d = nil
		default:
			return fmt.Errorf("cannot store %T in *[]byte", src)
		}
		return nil
	case *int64:
		switch s := src.(type) {
		case int64:
			*d = s
		case float64:
			*d = int64(s)
		case nil:
			*d = 0
		default:
			return fmt.Errorf("cannot store %T in *int64", src)
		}
		return nil
	case *float64:
		switch s := src.(type) {
		case float64:
			*d = s
		case int64:
			*d = float64(s)
		case nil:
			*d = 0
		default:
			return fmt.Errorf("cannot store %T in *float64", src)
		}
		return nil
	case *bool:
		switch s := src.(type) {
		case int64:
			*d = s != 0
		case nil:
			*d = false
		default:
			return fmt.Errorf("cannot store %T in *bool", src)
		}
		return nil
	}
	return fmt.Errorf("unsupported destination %T", dest)
}

// SQLiteResult carries the connection counters read after execution.
type SQLiteResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r *SQLiteResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }
func (r *SQLiteResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

var (
	_ Database = (*SQLiteDatabase)(nil)
	_ Rows     = (*SQLiteRows)(nil)
)
