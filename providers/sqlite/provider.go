// Package sqlite registers the "sqlite" connector provider backed by a
// single zombiezen sqlite connection.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/sqlgen/connector"
	"github.com/Konsultn-Engineering/sqlgen/database"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/schema"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

var ErrNoPath = errors.New("sqlite: no database path")

type Provider struct{}

func init() {
	connector.Register("sqlite", &Provider{})
}

// Connect opens cfg.Path, falling back to cfg.Database.
func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		return nil, ErrNoPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &connection{db: db}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}

type connection struct {
	db *database.SQLiteDatabase
}

func (c *connection) Database() database.Database {
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}

func (c *connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	return connector.ConnectionStats{OpenConnections: 1, InUse: 1, MaxOpen: 1}
}

func (c *connection) Close() error {
	return c.db.Close()
}

// Columns reads the columns of table through pragma_table_info. schemaName
// selects an attached database; empty means "main".
func (c *connection) Columns(ctx context.Context, schemaName, table string) ([]schema.ColumnInfo, error) {
	if schemaName == "" {
		schemaName = "main"
	}
	conn := c.db.Conn()
	prev := conn.SetInterrupt(ctx.Done())
	defer conn.SetInterrupt(prev)

	var columns []schema.ColumnInfo
	pkCount := 0
	err := sqlitex.ExecuteTransient(conn,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?, ?) ORDER BY cid`,
		&sqlitex.ExecOptions{
			Args: []any{table, schemaName},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				col := schema.ColumnInfo{
					Name:       stmt.ColumnText(0),
					PrimaryKey: stmt.ColumnInt64(4) > 0,
					Nullable:   stmt.ColumnInt64(2) == 0,
				}
				col.DBType, col.Size = splitType(stmt.ColumnText(1))
				if stmt.ColumnType(3) != sqlite.TypeNull {
					def := stmt.ColumnText(3)
					col.Default = &def
				}
				if col.PrimaryKey {
					pkCount++
					col.Nullable = false
				}
				columns = append(columns, col)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns of %s.%s: %w", schemaName, table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", schema.ErrNoColumns, schemaName, table)
	}

	// A lone INTEGER PRIMARY KEY aliases the rowid and is assigned on insert.
	if pkCount == 1 {
		for i := range columns {
			if columns[i].PrimaryKey && strings.EqualFold(columns[i].DBType, "INTEGER") {
				columns[i].AutoIncrement = true
			}
		}
	}
	return columns, nil
}

// splitType separates "VARCHAR(255)" into its name and parameters.
func splitType(decl string) (string, string) {
	decl = strings.TrimSpace(decl)
	open := strings.IndexByte(decl, '(')
	if open < 0 || !strings.HasSuffix(decl, ")") {
		return decl, ""
	}
	return strings.TrimSpace(decl[:open]), strings.ReplaceAll(decl[open+1:len(decl)-1], " ", "")
}

var _ connector.IntrospectingConnection = (*connection)(nil)
