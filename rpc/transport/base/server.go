package base

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"pkt.systems/pslog"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server
// operations.
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality.
// Connections are handled on their own goroutines; requests are framed off
// the wire one at a time per connection and passed to the registered
// handler. What the payload means is entirely the handler's business.
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	config    common.ServerConfig
	listener  net.Listener
	logger    pslog.Logger

	// conns tracks live connections so Close can tear them down
	conns      *xsync.MapOf[uint64, net.Conn]
	nextConnID atomic.Uint64
	closing    atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the
// specified connector. A nil logger is replaced with a no-op logger.
func NewBaseServerTransport(connector IServerConnector, logger pslog.Logger) transport.IRPCServerTransport {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &serverTransport{
		connector: connector,
		logger:    logger,
		conns:     xsync.NewMapOf[uint64, net.Conn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return err
	}
	t.listener = listener

	t.logger.Info("transport.listening",
		"transport", t.connector.GetName(),
		"endpoint", config.Endpoint)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closing.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			t.logger.Warn("transport.accept_error", "error", err)
			continue
		}

		id := t.nextConnID.Add(1)
		t.conns.Store(id, conn)
		go t.handleConnection(id, conn)
	}
}

func (t *serverTransport) Close() error {
	if !t.closing.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}

	t.conns.Range(func(id uint64, conn net.Conn) bool {
		conn.Close()
		return true
	})

	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection frames requests off one connection until it closes, the
// handler asks for it to be closed, or the whole transport shuts down.
func (t *serverTransport) handleConnection(id uint64, conn net.Conn) {
	defer func() {
		t.conns.Delete(id)
		conn.Close()
	}()

	timeout := time.Duration(t.config.TimeoutSecond) * time.Second
	limit := maxFrameSize(t.config.MaxFrameSize)

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				t.logger.Error("transport.set_read_deadline", "error", err)
				return
			}
		}

		req, err := readFrame(conn, limit)
		if err == io.EOF {
			t.logger.Debug("transport.conn_closed_by_client", "conn", id)
			return
		}
		if err != nil {
			if t.closing.Load() {
				return
			}
			// A bad length field means a framing or version mismatch; the
			// connection cannot be trusted to frame anything after it.
			t.logger.Warn("transport.read_error", "conn", id, "error", err)
			return
		}

		resp, verdict := t.handler(req)

		if resp != nil {
			if timeout > 0 {
				if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
					t.logger.Error("transport.set_write_deadline", "error", err)
					return
				}
			}
			if err := writeFrame(conn, resp); err != nil {
				t.logger.Error("transport.write_error", "conn", id, "error", err)
				return
			}
		}

		switch verdict {
		case transport.VerdictCloseConn:
			return
		case transport.VerdictShutdown:
			t.Close()
			return
		}
	}
}
