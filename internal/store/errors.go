package store

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("store is closed")

// Error is a failure to load a table into, or run a query against, the store.
type Error struct {
	// Op is one of "open", "load", "query", "count" or "tables".
	Op string
	// Name is the table, query or path involved, if any.
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
