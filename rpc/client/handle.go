package client

import (
	"context"
	"sync"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/transport"
	"pkt.systems/pslog"
)

// --------------------------------------------------------------------------
// Shared Handle
// --------------------------------------------------------------------------

// IManager is the lifecycle surface the handle drives: starting the daemon
// on demand and running the periodic health loop. The lifecycle package's
// Manager satisfies it.
type IManager interface {
	IStarter
	Run(ctx context.Context)
}

// Handle is the process-wide entry point to the write daemon. An
// application constructs exactly one Handle at startup, passes it to every
// collaborator that performs writes, and closes it at shutdown. Reads do
// not go through the handle; they open the storage file directly.
type Handle struct {
	client IClient

	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// NewHandle builds the shared client and, when a manager is given, starts
// its health loop in the background. The loop stops when the handle is
// closed. manager may be nil for setups that run the daemon under an
// external supervisor.
func NewHandle(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
	manager IManager,
	logger pslog.Logger,
) *Handle {
	var starter IStarter
	if manager != nil {
		starter = manager
	}

	h := &Handle{
		client: NewRPCClient(config, transport, serializer, starter, logger),
		done:   make(chan struct{}),
	}

	if manager != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go func() {
			defer close(h.done)
			manager.Run(ctx)
		}()
	} else {
		close(h.done)
	}

	return h
}

// Client returns the shared daemon client.
func (h *Handle) Client() IClient {
	return h.client
}

// Close stops the health loop and releases the client's connections. It is
// safe to call more than once.
func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		if h.cancel != nil {
			h.cancel()
		}
		<-h.done
		err = h.client.Close()
	})
	return err
}
