// Package rpc contains the request/response machinery between scribe
// clients and the scribed write daemon. It is the communication layer that
// turns concurrent writers in many processes into one serialized stream of
// batches.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures shared by both sides, including the
//     request and response documents, the error taxonomy and configuration
//     structures.
//
//   - transport: Framed byte channels with pluggable implementations
//     (Unix sockets, TCP).
//
//   - serializer: Document serialization with multiple format options
//     (JSON, GOB) for converting between documents and byte arrays.
//
//   - client: The application-side handle, including correlation IDs and
//     the auto-start retry cycle.
//
//   - server: The daemon itself: writer lock, FIFO executor, replay guard
//     and graceful shutdown.
package rpc
