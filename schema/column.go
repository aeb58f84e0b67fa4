package schema

import (
	"context"
)

// ColumnInfo describes one table column as reported by a database catalog.
type ColumnInfo struct {
	Name          string
	DBType        string
	PrimaryKey    bool
	Nullable      bool
	AutoIncrement bool
	Size          string
	Default       *string
}

// TemplateType returns the template type used for the column's variables.
func (c ColumnInfo) TemplateType() string {
	return TemplateType(c.DBType)
}

// Optional reports whether an INSERT may leave the column out.
func (c ColumnInfo) Optional() bool {
	return c.AutoIncrement || c.Nullable || c.Default != nil
}

// Introspector reads column metadata for a table. Implementations live in
// the providers packages.
type Introspector interface {
	Columns(ctx context.Context, schema, table string) ([]ColumnInfo, error)
}
