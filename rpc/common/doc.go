// Package common provides core data structures shared across the scribe
// RPC system. It defines the protocol documents, configuration structures
// and the error taxonomy used by every other package.
//
// The package focuses on:
//   - Request/Response document definitions for client-daemon communication
//   - Configuration structures for client and server components
//   - Deterministic channel address derivation from the daemon identity
//     and protocol version, so incompatible daemon versions never share
//     an address
//   - A typed error taxonomy (protocol, connection, timeout, availability,
//     engine and lifecycle failures) that is returned to callers, never
//     swallowed
//
// Key Components:
//
//   - Request: the document a client sends to the daemon; carries a unique
//     correlation ID, the request kind, the statements of a batch and the
//     transaction mode. Factory functions exist for every kind.
//
//   - Response: the document the daemon answers with, correlated to exactly
//     one Request by ID. Reports rows affected, the exact count of committed
//     statements and, on failure, the failing statement's index.
//
//   - RequestKind / TransactionMode / MaintenanceOp: enumerations serialized
//     as strings on the wire.
//
//   - ServerConfig / ClientConfig: configuration for the daemon process and
//     for client connections.
package common
