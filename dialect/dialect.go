// Package dialect renders Go values as SQL literals for the databases
// sqlgen targets.
package dialect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Dialect escapes values and identifiers for one SQL flavour.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	RenderValue(v any) string
}

var ErrUnknownDialect = errors.New("unknown dialect")

// Lookup returns the dialect registered under name. Matching ignores case;
// an empty name selects the generic dialect.
func Lookup(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pg":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	case "generic", "":
		return NewGenericDialect(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// Names lists the canonical dialect names accepted by Lookup.
func Names() []string {
	return []string{"generic", "mysql", "postgres", "sqlite", "tidb"}
}

// literalStyle holds the parts of value rendering that differ between
// dialects.
type literalStyle struct {
	quote      func(s string) string
	bytes      func(b []byte) string
	trueLit    string
	falseLit   string
	timeLayout string
}

func (st *literalStyle) render(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return st.quote(val)
	case bool:
		if val {
			return st.trueLit
		}
		return st.falseLit
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return "'" + val.Format(st.timeLayout) + "'"
	case []byte:
		if val == nil {
			return "NULL"
		}
		return st.bytes(val)
	case uuid.UUID:
		return st.quote(val.String())
	case ulid.ULID:
		return st.quote(val.String())
	case fmt.Stringer:
		return st.quote(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL"
		}
		return st.render(rv.Elem().Interface())
	case reflect.String:
		return st.quote(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Bool:
		return st.render(rv.Bool())
	}
	return st.quote(fmt.Sprint(v))
}

// quoteDoubling escapes quotes by doubling them, the SQL standard way.
func quoteDoubling(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteBackslash escapes quotes and backslashes with a backslash.
func quoteBackslash(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// hexBlob renders X'0a0b', understood by MySQL and SQLite.
func hexBlob(b []byte) string {
	return "X'" + hex.EncodeToString(b) + "'"
}
