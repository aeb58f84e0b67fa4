package dialect

import (
	"fmt"
	"strings"
)

type Postgres struct{}

var postgresStyle = &literalStyle{
	quote: quoteDoubling,
	bytes: func(b []byte) string {
		return fmt.Sprintf("'\\x%x'::bytea", b)
	},
	trueLit:    "TRUE",
	falseLit:   "FALSE",
	timeLayout: "2006-01-02 15:04:05.000000Z07:00",
}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string {
	return "postgres"
}

func (Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Postgres) RenderValue(v any) string {
	return postgresStyle.render(v)
}
