package builder

import (
	"errors"
)

var (
	ErrDuplicateOutput  = errors.New("output variable used more than once")
	ErrUnknownType      = errors.New("unknown type")
	ErrTooManyVariables = errors.New("more than 64 distinct input variables are not allowed")
	ErrTypeConflict     = errors.New("input variable used with differing types")
	ErrUnbalanced       = errors.New("unbalanced optional brackets")
)

// Error is a build failure of one statement. Source holds the statement
// text when it is known.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + " in\n" + e.Source
}

func (e *Error) Unwrap() error {
	return e.Err
}
