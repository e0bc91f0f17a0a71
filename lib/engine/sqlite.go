package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// --------------------------------------------------------------------------
// Engine Implementation (SQLite)
// --------------------------------------------------------------------------

// sqliteEngine implements IEngine on top of a single SQLite database file.
// The handle is restricted to one connection so that all statements run on
// the same underlying session (required for PRAGMA and WAL semantics).
type sqliteEngine struct {
	path string
	db   *sql.DB
}

// NewSQLiteEngine opens (or creates) the database file at path and returns
// an engine bound to it. The database runs in WAL mode with a busy timeout
// so that concurrent readers in other processes do not starve the writer.
func NewSQLiteEngine(path string) (IEngine, error) {
	e := &sqliteEngine{path: path}
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *sqliteEngine) open() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		e.path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return &Error{Index: -1, Msg: err.Error(), Err: err}
	}

	// One connection: the daemon is the single writer, and pragmas set on
	// the session must apply to every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return &Error{Index: -1, Msg: err.Error(), Err: err}
	}

	e.db = db
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (e *sqliteEngine) ExecBatch(ctx context.Context, stmts []Statement, mode Mode) (*BatchResult, error) {
	if e.db == nil {
		return nil, &Error{Index: -1, Msg: "database is closed"}
	}

	switch mode {
	case ModePerStatement:
		return e.execPerStatement(ctx, stmts)
	default:
		return e.execAtomic(ctx, stmts)
	}
}

func (e *sqliteEngine) Checkpoint(ctx context.Context) error {
	if e.db == nil {
		return &Error{Index: -1, Msg: "database is closed"}
	}
	if _, err := e.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return &Error{Index: -1, Msg: err.Error(), Err: err}
	}
	return nil
}

func (e *sqliteEngine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	if err != nil {
		return &Error{Index: -1, Msg: err.Error(), Err: err}
	}
	return nil
}

func (e *sqliteEngine) Reopen(ctx context.Context) error {
	if e.db != nil {
		return nil
	}
	return e.open()
}

func (e *sqliteEngine) Path() string {
	return e.path
}

// --------------------------------------------------------------------------
// Batch Execution
// --------------------------------------------------------------------------

// dbtx is the common subset of *sql.DB and *sql.Tx the executor needs.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// execAtomic runs all statements inside one transaction. Any failure rolls
// the transaction back, so the batch either applies completely or not at
// all.
func (e *sqliteEngine) execAtomic(ctx context.Context, stmts []Statement) (*BatchResult, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &Error{Index: -1, Msg: err.Error(), Err: err}
	}

	res := &BatchResult{}
	for i, stmt := range stmts {
		if err := e.execOne(ctx, tx, stmt, res); err != nil {
			_ = tx.Rollback()
			return nil, newError(i, err)
		}
		res.Succeeded++
	}

	if err := tx.Commit(); err != nil {
		return nil, &Error{Index: -1, Msg: err.Error(), Err: err}
	}
	return res, nil
}

// execPerStatement commits every statement on its own and halts at the
// first failure. The returned BatchResult is valid even on error and
// reflects the statements that were committed before the failure.
func (e *sqliteEngine) execPerStatement(ctx context.Context, stmts []Statement) (*BatchResult, error) {
	res := &BatchResult{}
	for i, stmt := range stmts {
		if err := e.execOne(ctx, e.db, stmt, res); err != nil {
			return res, newError(i, err)
		}
		res.Succeeded++
	}
	return res, nil
}

// execOne executes a single statement and accumulates its outcome into res.
// Row-returning statements replace the result set captured so far, so a
// batch reports the rows of its last query.
func (e *sqliteEngine) execOne(ctx context.Context, q dbtx, stmt Statement, res *BatchResult) error {
	params := make([]any, len(stmt.Params))
	for i, p := range stmt.Params {
		params[i] = normalizeParam(p)
	}

	if !returnsRows(stmt.SQL) {
		r, err := q.ExecContext(ctx, stmt.SQL, params...)
		if err != nil {
			return err
		}
		if n, err := r.RowsAffected(); err == nil {
			res.RowsAffected += n
		}
		return nil
	}

	rows, err := q.QueryContext(ctx, stmt.SQL, params...)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	var collected [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range vals {
			// database/sql yields TEXT columns as []byte
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		collected = append(collected, vals)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	res.Columns = cols
	res.Rows = collected
	return nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// returnsRows reports whether the statement produces a result set. The
// check is keyword-based; it covers the statements SQLite can return rows
// from, including DML with a RETURNING clause.
func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "VALUES", "PRAGMA", "EXPLAIN", "WITH":
		return true
	}
	return strings.Contains(strings.ToUpper(query), " RETURNING ")
}

// normalizeParam converts values the wire decoder produces into types the
// driver accepts. Numbers arrive as json.Number to avoid float rounding of
// large integers.
func normalizeParam(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// IsCorruption reports whether err indicates an unrecoverable corrupt
// database file. Callers use this to distinguish fatal storage errors from
// ordinary statement failures.
func IsCorruption(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return true
	}
	return false
}
