// Package engine contains the storage engine of the scribed daemon.
//
// The engine executes batches of SQL statements against a single SQLite
// database file. Two transaction modes are supported: atomic batches run
// inside one transaction and either apply completely or not at all, while
// per-statement batches commit each statement independently and halt at
// the first failure.
//
// The engine itself performs no locking and no queueing. Serialization of
// writers is the responsibility of the daemon, which funnels every batch
// through a single executor goroutine and holds an exclusive file lock for
// the lifetime of the process (see the flock package).
package engine
