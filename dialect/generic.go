package dialect

import (
	"strings"
)

// Generic escapes with backslashes and is used when a template file names
// no dialect.
type Generic struct{}

var genericStyle = &literalStyle{
	quote:      quoteBackslash,
	bytes:      hexBlob,
	trueLit:    "TRUE",
	falseLit:   "FALSE",
	timeLayout: "2006-01-02 15:04:05",
}

func NewGenericDialect() Dialect {
	return &Generic{}
}

func (Generic) Name() string {
	return "generic"
}

func (Generic) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Generic) RenderValue(v any) string {
	return genericStyle.render(v)
}
