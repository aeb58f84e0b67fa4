package dialect

import (
	"strings"
)

type MySQL struct{}

// MySQL treats backslash as an escape character inside string literals
// unless NO_BACKSLASH_ESCAPES is set, so both are escaped.
var mysqlStyle = &literalStyle{
	quote:      quoteBackslash,
	bytes:      hexBlob,
	trueLit:    "TRUE",
	falseLit:   "FALSE",
	timeLayout: "2006-01-02 15:04:05.000000",
}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (MySQL) Name() string {
	return "mysql"
}

func (MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (MySQL) RenderValue(v any) string {
	return mysqlStyle.render(v)
}
