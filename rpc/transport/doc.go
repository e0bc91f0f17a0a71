// Package transport defines the byte-stream channel abstractions of the
// scribe RPC system. Payloads travel as length-prefixed frames: a 4-byte
// little-endian length followed by exactly that many payload bytes.
//
// The package contains only interfaces; concrete implementations live in
// the subpackages:
//
//   - base: protocol-agnostic client and server implementations built on
//     injectable connectors
//   - unix: Unix domain socket connectors (the default local channel)
//   - tcp: loopback TCP connectors for platforms without unix sockets
//
// The transport layer frames bytes; it never interprets payloads. What a
// frame means is the business of the client and server packages.
package transport
