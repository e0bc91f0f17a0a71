package tcp

import (
	"fmt"
	"net"

	"pkt.systems/pslog"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/transport"
	"github.com/scribedb/scribe/rpc/transport/base"
)

// serverConnector implements the IServerConnector interface for TCP sockets.
// TCP exists for command line tools on platforms without unix sockets; the
// listener should stay bound to loopback.
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create tcp socket: %v", err)
	}

	return listener, nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPServerTransport creates a new TCP server transport
func NewTCPServerTransport(logger pslog.Logger) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, logger)
}
