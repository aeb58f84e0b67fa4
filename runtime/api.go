// Package runtime is the support library imported by generated statement
// code: it executes rendered statements and iterates typed rows.
package runtime

import (
	"context"

	"github.com/Konsultn-Engineering/sqlgen/database"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
)

// Statement is anything that renders to executable SQL text. Every
// generated parameter type implements it.
type Statement interface {
	Render() (string, error)
}

// API binds a database to the dialect used when rendering values.
// Generated statement groups embed it.
type API struct {
	DB      database.Database
	Dialect dialect.Dialect
}

// NewAPI returns an API for db. A nil dialect selects the generic one.
func NewAPI(db database.Database, d dialect.Dialect) *API {
	return &API{DB: db, Dialect: d}
}

// Runtime returns the API itself so that types embedding *API expose it under a
// fixed name.
func (a *API) Runtime() *API {
	return a
}

func (a *API) dialect() dialect.Dialect {
	if a == nil || a.Dialect == nil {
		return dialect.NewGenericDialect()
	}
	return a.Dialect
}

// Escape renders v as an SQL literal of the configured dialect.
func (a *API) Escape(v any) string {
	return a.dialect().RenderValue(v)
}

// Ident quotes an identifier, e.g. for literal variables holding a column.
func (a *API) Ident(name string) string {
	return a.dialect().QuoteIdentifier(name)
}

// Exec renders and executes stmt.
func (a *API) Exec(ctx context.Context, stmt Statement) (database.Result, error) {
	if a == nil || a.DB == nil {
		return nil, ErrNoDatabase
	}
	query, err := stmt.Render()
	if err != nil {
		return nil, err
	}
	return a.DB.ExecContext(ctx, query)
}

// QueryRows renders stmt and returns the raw cursor.
func (a *API) QueryRows(ctx context.Context, stmt Statement) (database.Rows, error) {
	if a == nil || a.DB == nil {
		return nil, ErrNoDatabase
	}
	query, err := stmt.Render()
	if err != nil {
		return nil, err
	}
	return a.DB.QueryContext(ctx, query)
}

// Query renders and runs stmt, returning a typed iterator over its rows.
func Query[T any, P Row[T]](ctx context.Context, a *API, stmt Statement) (*RowIterator[T, P], error) {
	rows, err := a.QueryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return NewRowIterator[T, P](rows), nil
}
