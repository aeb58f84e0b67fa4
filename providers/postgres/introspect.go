package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Konsultn-Engineering/sqlgen/schema"
	"github.com/jackc/pgx/v5"
)

const columnsQuery = `
SELECT c.column_name::text,
       c.data_type::text,
       c.is_nullable = 'YES',
       c.character_maximum_length::int,
       c.numeric_precision::int,
       c.numeric_scale::int,
       c.column_default::text,
       c.is_identity = 'YES' OR COALESCE(c.column_default LIKE 'nextval(%', false),
       EXISTS (
           SELECT 1
             FROM information_schema.table_constraints tc
             JOIN information_schema.key_column_usage k
               ON k.constraint_schema = tc.constraint_schema
              AND k.constraint_name = tc.constraint_name
            WHERE tc.constraint_type = 'PRIMARY KEY'
              AND tc.table_schema = c.table_schema
              AND tc.table_name = c.table_name
              AND k.column_name = c.column_name
       )
  FROM information_schema.columns c
 WHERE c.table_schema = $1
   AND c.table_name = $2
 ORDER BY c.ordinal_position`

// Columns reads the columns of schemaName.table in declaration order. An
// empty schemaName means "public".
func (c *connection) Columns(ctx context.Context, schemaName, table string) ([]schema.ColumnInfo, error) {
	if schemaName == "" {
		schemaName = "public"
	}
	rows, err := c.pool.Query(ctx, columnsQuery, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("postgres: columns of %s.%s: %w", schemaName, table, err)
	}

	columns, err := pgx.CollectRows(rows, scanColumn)
	if err != nil {
		return nil, fmt.Errorf("postgres: columns of %s.%s: %w", schemaName, table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", schema.ErrNoColumns, schemaName, table)
	}
	return columns, nil
}

func scanColumn(row pgx.CollectableRow) (schema.ColumnInfo, error) {
	var col schema.ColumnInfo
	var length, prec, scale *int32
	err := row.Scan(&col.Name, &col.DBType, &col.Nullable, &length, &prec, &scale,
		&col.Default, &col.AutoIncrement, &col.PrimaryKey)
	if err != nil {
		return col, err
	}
	col.Size = columnSize(length, prec, scale)
	return col, nil
}

// columnSize renders the type parameters the catalog reports, e.g. "255"
// for varchar(255) or "10,2" for numeric(10,2).
func columnSize(length, prec, scale *int32) string {
	switch {
	case length != nil:
		return strconv.Itoa(int(*length))
	case prec != nil && scale != nil && *scale > 0:
		return strconv.Itoa(int(*prec)) + "," + strconv.Itoa(int(*scale))
	}
	return ""
}
