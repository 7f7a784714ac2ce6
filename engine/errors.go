package engine

import "fmt"

// ExecutionError is returned when a statement, or the lease it needed,
// failed. Params are the positional values actually sent, after rewriting.
type ExecutionError struct {
	SQL       string
	Params    []any
	SessionID string
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("execute %q: %v", e.SQL, e.Err)
	}
	return fmt.Sprintf("execute %q (session %s): %v", e.SQL, e.SessionID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// MultipleFieldsError is returned by GetOneField when the statement matched
// more than one row.
type MultipleFieldsError struct {
	SQL  string
	Rows int
}

func (e *MultipleFieldsError) Error() string {
	return fmt.Sprintf("more than one row returned (%d) for %q", e.Rows, e.SQL)
}

// ReleaseError describes a leased connection that could not be returned to
// the pool. It is logged, never returned: the statement's own outcome wins.
type ReleaseError struct {
	SessionID string
	Err       error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release connection %s: %v", e.SessionID, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }
