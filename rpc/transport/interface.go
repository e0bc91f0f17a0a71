package transport

import (
	"github.com/scribedb/scribe/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// Verdict tells the server transport what to do with the connection after a
// request was handled.
type Verdict int

const (
	// VerdictContinue keeps the connection open for further requests
	VerdictContinue Verdict = iota
	// VerdictCloseConn answers, then closes only this connection
	VerdictCloseConn
	// VerdictShutdown answers, then stops the listener so the daemon can
	// finish its graceful shutdown
	VerdictShutdown
)

// ServerHandleFunc handles one decoded frame payload. It returns the
// response payload (nil to send nothing) and a verdict for the connection.
// The transport layer frames payloads; it never interprets them.
type ServerHandleFunc func(req []byte) (resp []byte, verdict Verdict)

// IRPCServerTransport is the interface for the daemon-side transport layer.
type IRPCServerTransport interface {
	// RegisterHandler registers the handler invoked once per received frame
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and serves until a handler returns
	// VerdictShutdown or the listener is closed
	Listen(config common.ServerConfig) error
	// Close stops the listener and closes all live connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client-side transport.
// Send performs one framed round trip; each call owns one connection for the
// duration of the exchange, drawn from an idle pool guarded by a mutex.
type IRPCClientTransport interface {
	// Configure initializes the transport with the given configuration
	Configure(config common.ClientConfig)
	// Send writes one frame and blocks until the full response frame is read.
	// An exchange that breaks on a pooled connection is repeated on a fresh
	// one. A closed or broken channel surfaces as a ConnectionLost error, an
	// expired deadline as a Timeout error, and a malformed length field as a
	// ProtocolError.
	Send(req []byte) (resp []byte, err error)
	// Close closes all pooled connections. The transport stays usable; the
	// next Send dials fresh.
	Close() error
}
