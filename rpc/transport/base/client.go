package base

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection
// operations.
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.).
//
// Each Send call owns exactly one connection for the duration of its round
// trip: it checks a connection out of the idle pool (or dials a fresh one),
// writes the request frame, blocks on the response frame, and returns the
// connection to the pool. A pooled connection may have been closed by the
// server while it sat idle, so an exchange that breaks on a pooled
// connection is transparently repeated on the next one, ending with a fresh
// dial. The mutex-guarded pool is the only state shared across concurrent
// calls, so the transport is safe for use from any number of goroutines.
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig

	mu   sync.Mutex
	idle []net.Conn
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the
// specified connector.
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Configure(config common.ClientConfig) {
	t.config = config
}

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	for {
		conn, pooled := t.checkout()
		if conn == nil {
			fresh, err := t.connector.Connect(t.config.Endpoint)
			if err != nil {
				return nil, common.WrapError(common.ErrKindConnectionLost, "connect failed", err)
			}
			conn = fresh
		}

		resp, err := t.roundTrip(conn, req)
		if err == nil {
			t.checkin(conn)
			return resp, nil
		}

		// A broken connection never goes back into the pool.
		conn.Close()

		switch {
		case common.IsKind(err, common.ErrKindProtocol):
			return nil, err
		case isTimeout(err):
			// The server is up but slow. The request may still be executing,
			// so this must not look like a retryable connection loss.
			return nil, common.WrapError(common.ErrKindTimeout, "round trip timed out", err)
		case pooled:
			// The connection went stale while idling in the pool; the server
			// never saw the request. Repeat on the next pooled connection or
			// on a fresh dial.
			continue
		default:
			return nil, common.WrapError(common.ErrKindConnectionLost, "channel closed before response", err)
		}
	}
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, conn := range t.idle {
		conn.Close()
	}
	t.idle = nil
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// roundTrip performs one framed exchange on a connection the caller owns.
func (t *clientTransport) roundTrip(conn net.Conn, req []byte) ([]byte, error) {
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}

	if err := writeFrame(conn, req); err != nil {
		return nil, err
	}
	return readFrame(conn, maxFrameSize(t.config.MaxFrameSize))
}

// checkout draws an idle connection from the pool. It returns nil when the
// pool is empty; the caller dials fresh in that case.
func (t *clientTransport) checkout() (net.Conn, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.idle); n > 0 {
		conn := t.idle[n-1]
		t.idle = t.idle[:n-1]
		return conn, true
	}
	return nil, false
}

// isTimeout reports whether err is a network deadline expiry.
func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// checkin returns a healthy connection to the pool, or closes it when the
// pool is full.
func (t *clientTransport) checkin(conn net.Conn) {
	limit := t.config.MaxIdleConns
	if limit <= 0 {
		limit = 4
	}

	t.mu.Lock()
	if len(t.idle) < limit {
		t.idle = append(t.idle, conn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	conn.Close()
}
