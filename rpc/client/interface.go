package client

import (
	"github.com/scribedb/scribe/rpc/common"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStarter starts the daemon process when the client cannot reach it. The
// lifecycle package provides the production implementation; tests inject
// their own.
type IStarter interface {
	// Start launches the daemon and blocks until it answers pings or a
	// startup timeout elapses.
	Start() error
}

// Result is the outcome of a successfully executed batch.
type Result struct {
	// Rev is the daemon's batch counter after this batch was applied
	Rev uint64
	// RowsAffected is the total number of rows changed by the batch
	RowsAffected int64
	// Succeeded is the number of statements that committed
	Succeeded int
	// Columns and Rows carry the result of the last row-returning
	// statement in the batch, if any
	Columns []string
	Rows    [][]any
}

// IClient is the interface for talking to the scribed daemon. All methods
// are safe for concurrent use. A client holds no per-call state beyond the
// connection pool of its transport, so one client instance is meant to be
// shared across an application.
type IClient interface {
	// Exec executes a single statement with independent commit semantics.
	Exec(stmt common.Statement) (*Result, error)
	// ExecBatch executes a batch of statements with the given mode.
	ExecBatch(stmts []common.Statement, mode common.TransactionMode) (*Result, error)
	// Ping reports whether the daemon is reachable and answering. It never
	// triggers an automatic daemon start.
	Ping() bool
	// Rev returns the daemon's current batch counter via a ping exchange.
	Rev() (uint64, error)
	// Maintenance runs a storage maintenance operation on the daemon.
	Maintenance(op common.MaintenanceOp) error
	// Shutdown asks the daemon to drain its queue and exit gracefully.
	Shutdown() error
	// Disconnect closes the daemon side of this client's connections; the
	// daemon keeps running for other clients.
	Disconnect() error
	// Close releases the client's pooled connections.
	Close() error
}
