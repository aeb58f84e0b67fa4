package runtime

import (
	"iter"

	"github.com/Konsultn-Engineering/sqlgen/database"
)

// Row is the constraint satisfied by pointers to generated row types.
type Row[T any] interface {
	*T
	Load(rows database.Rows) error
	Clone() *T
}

// RowIterator is a lazy, forward-only sequence of rows. The row returned by
// Row is reused between calls to Next; All and One hand out copies. The
// cursor is closed once the rows are exhausted, on the first error, or by
// Close.
type RowIterator[T any, P Row[T]] struct {
	rows database.Rows
	cur  T
	err  error
}

// NewRowIterator wraps an open cursor.
func NewRowIterator[T any, P Row[T]](rows database.Rows) *RowIterator[T, P] {
	return &RowIterator[T, P]{rows: rows}
}

// Next loads the next row and reports whether there was one.
func (it *RowIterator[T, P]) Next() bool {
	if it.rows == nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		it.Close()
		return false
	}
	if err := P(&it.cur).Load(it.rows); err != nil {
		it.err = err
		it.Close()
		return false
	}
	return true
}

// Row returns the current row.
func (it *RowIterator[T, P]) Row() *T {
	return &it.cur
}

// Err returns the error that stopped iteration, if any.
func (it *RowIterator[T, P]) Err() error {
	return it.err
}

// Close releases the cursor. It is safe to call more than once.
func (it *RowIterator[T, P]) Close() error {
	if it.rows == nil {
		return nil
	}
	err := it.rows.Close()
	it.rows = nil
	return err
}

// All collects up to limit rows (all rows when limit < 0) and closes the
// iterator.
func (it *RowIterator[T, P]) All(limit int) ([]*T, error) {
	defer it.Close()
	var out []*T
	for (limit < 0 || len(out) < limit) && it.Next() {
		out = append(out, P(&it.cur).Clone())
	}
	return out, it.err
}

// One returns the first row and closes the iterator. ErrNoRows is returned
// for an empty result.
func (it *RowIterator[T, P]) One() (*T, error) {
	defer it.Close()
	if !it.Next() {
		if it.err != nil {
			return nil, it.err
		}
		return nil, ErrNoRows
	}
	return P(&it.cur).Clone(), nil
}

// Seq adapts the iterator to a range-over-func loop. The yielded row is
// reused; check Err after the loop.
func (it *RowIterator[T, P]) Seq() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(&it.cur) {
				return
			}
		}
	}
}
