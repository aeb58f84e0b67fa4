package runtime

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingParams is returned by Render when a variable the statement
	// needs unconditionally is not bound.
	ErrMissingParams = errors.New("missing required arguments")
	ErrNoDatabase    = errors.New("no database configured")
	ErrNoRows        = sql.ErrNoRows
)

// MissingParams builds the error returned when available lacks bits of
// required. names lists the input variables in bit order.
func MissingParams(statement string, names []string, required, available uint64) error {
	missing := required &^ available
	var absent []string
	for i, name := range names {
		if missing&(1<<uint(i)) != 0 {
			absent = append(absent, name)
		}
	}
	if statement == "" {
		return fmt.Errorf("%w: %s", ErrMissingParams, strings.Join(absent, ", "))
	}
	return fmt.Errorf("%s: %w: %s", statement, ErrMissingParams, strings.Join(absent, ", "))
}
