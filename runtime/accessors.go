package runtime

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Column readers used by generated Load methods. Each returns a
// sql.Scanner storing into dst; NULL stores the zero value.

type nullable[T any] struct {
	dst *T
}

func (n nullable[T]) Scan(src any) error {
	if src == nil {
		var zero T
		*n.dst = zero
		return nil
	}
	var v sql.Null[T]
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = v.V
	return nil
}

func String(dst *string) sql.Scanner { return nullable[string]{dst} }
func Int8(dst *int8) sql.Scanner { return nullable[int8]{dst} }
func Int16(dst *int16) sql.Scanner { return nullable[int16]{dst} }
func Int32(dst *int32) sql.Scanner { return nullable[int32]{dst} }
func Int64(dst *int64) sql.Scanner { return nullable[int64]{dst} }
func Float32(dst *float32) sql.Scanner { return nullable[float32]{dst} }
func Float64(dst *float64) sql.Scanner { return nullable[float64]{dst} }
func Bool(dst *bool) sql.Scanner { return nullable[bool]{dst} }
func Bytes(dst *[]byte) sql.Scanner { return nullable[[]byte]{dst} }
func UUID(dst *uuid.UUID) sql.Scanner { return nullable[uuid.UUID]{dst} }
func ULID(dst *ulid.ULID) sql.Scanner { return nullable[ulid.ULID]{dst} }
func Time(dst *time.Time) sql.Scanner { return timeScanner{dst} }

// timeLayouts are tried in order for drivers that return times as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"15:04:05.999999999",
}

type timeScanner struct {
	dst *time.Time
}

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = v
		return nil
	case int64:
		*s.dst = time.Unix(v, 0).UTC()
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	}
	return fmt.Errorf("cannot scan %T into time.Time", src)
}

func (s timeScanner) parse(text string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			*s.dst = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as time", text)
}
