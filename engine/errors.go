package engine

import (
	"errors"
	"fmt"
)

var ErrDuplicateName = errors.New("statement defined more than once")

// StatementError reports the statement of a host file that failed to
// compile.
type StatementError struct {
	File      string
	Statement string
	Line      int
	Err       error
}

func (e *StatementError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Statement, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
