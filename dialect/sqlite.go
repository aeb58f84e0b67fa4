package dialect

import (
	"strings"
)

type SQLite struct{}

var sqliteStyle = &literalStyle{
	quote:      quoteDoubling,
	bytes:      hexBlob,
	trueLit:    "1",
	falseLit:   "0",
	timeLayout: "2006-01-02 15:04:05.000",
}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (SQLite) Name() string {
	return "sqlite"
}

func (SQLite) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (SQLite) RenderValue(v any) string {
	return sqliteStyle.render(v)
}
