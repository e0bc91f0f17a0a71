package engine

import (
	"context"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Statement is a single SQL statement with positional parameters.
type Statement struct {
	SQL    string
	Params []any
}

// Mode controls the transactional semantics of a batch.
type Mode uint8

const (
	// ModeAtomic executes all statements of a batch inside one transaction.
	// If any statement fails the transaction is rolled back and the batch
	// has no effect.
	ModeAtomic Mode = iota
	// ModePerStatement commits every statement independently. Execution
	// halts at the first failure; earlier statements stay committed.
	ModePerStatement
)

// BatchResult describes the outcome of a successfully executed batch.
type BatchResult struct {
	// RowsAffected is the sum of affected rows over all statements.
	RowsAffected int64
	// Succeeded is the number of statements that were executed. In atomic
	// mode this is always the full batch size.
	Succeeded int
	// Columns and Rows hold the result set of the last row-returning
	// statement of the batch, if any.
	Columns []string
	Rows    [][]any
}

// IEngine is the interface for the storage engine that executes batches.
// Implementations are not required to be safe for concurrent use: the
// daemon serializes all calls through a single executor.
type IEngine interface {
	// ExecBatch executes the statements with the given mode. On failure
	// the returned error is a *Error carrying the index of the failing
	// statement, and BatchResult reflects the work done before the
	// failure (zero in atomic mode).
	ExecBatch(ctx context.Context, stmts []Statement, mode Mode) (*BatchResult, error)
	// Checkpoint flushes the write-ahead log into the main database file.
	Checkpoint(ctx context.Context) error
	// Close releases the underlying database handle. Subsequent calls to
	// ExecBatch fail until Reopen is called.
	Close() error
	// Reopen re-establishes the database handle after a Close.
	Reopen(ctx context.Context) error
	// Path returns the database file path the engine was opened with.
	Path() string
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by ExecBatch. Index is the position of
// the failing statement within the batch, or -1 if the error is not bound
// to a single statement (e.g. the transaction could not be started).
type Error struct {
	Index int
	Msg   string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("engine: statement %d: %s", e.Index, e.Msg)
	}
	return fmt.Sprintf("engine: %s", e.Msg)
}

// Unwrap returns the underlying driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a statement-bound engine error wrapping err.
func newError(index int, err error) *Error {
	return &Error{Index: index, Msg: err.Error(), Err: err}
}
