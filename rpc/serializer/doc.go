// Package serializer provides document serialization for the scribe RPC
// system. It defines a common interface and two implementations for encoding
// request and response documents into frame payloads.
//
// The package focuses on:
//   - A consistent interface over different encodings
//   - Faithful round trips of every document field combination, including
//     empty statement lists and empty parameter lists
//   - Preserving integer statement parameters across the wire (JSON numbers
//     are decoded via json.Number, not float64)
//
// Key Components:
//
//   - IRPCSerializer: core interface all serializer implementations satisfy.
//
//   - jsonSerializerImpl: the canonical wire format. Payloads are UTF-8 JSON
//     documents, so non-Go clients and command line tooling can speak the
//     protocol directly.
//
//   - gobSerializerImpl: Go's gob encoding, usable when both ends are Go
//     processes (for example the in-process tests).
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
