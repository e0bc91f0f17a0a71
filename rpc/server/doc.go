// Package server implements the scribed daemon.
//
// The daemon is the single writer for one SQLite database file. It
// enforces that with an exclusive file lock taken before the engine is
// opened: a second daemon for the same file exits immediately with
// ExitAlreadyRunning. Requests arrive as framed documents over the
// transport layer; batches from all connections are funneled into one
// FIFO queue and applied by a single executor goroutine, so concurrent
// clients always observe some serial order.
//
// Pings are answered on the connection goroutine and never enter the
// queue, which keeps liveness probes honest even while a long batch is
// executing. A graceful shutdown request drains the queue before the
// process exits. Completed request IDs are remembered for a short TTL so
// a client retry after a lost response does not re-execute the batch; a
// retry arriving while its original is still in flight waits for that
// execution's response instead of queueing a second one.
package server
