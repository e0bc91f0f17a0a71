// Package base implements the connector-agnostic parts of the transport
// layer: frame reading and writing, the client connection pool, and the
// server accept loop with its live-connection registry.
//
// Concrete protocols plug in via IClientConnector and IServerConnector,
// which the unix and tcp subpackages provide.
package base
