package client

import (
	"github.com/google/uuid"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/transport"
	"pkt.systems/pslog"
)

// NewRPCClient creates a new daemon client.
// It takes a config, transport and serializer as parameters. starter may be
// nil, in which case the client never attempts to launch the daemon itself.
//
// Usage:
//
//	c := client.NewRPCClient(
//		config,
//		unix.NewUnixClientTransport(),
//		serializer.NewJSONSerializer(),
//		mgr,    // lifecycle manager, or nil
//		logger,
//	)
//	defer c.Close()
//
//	res, err := c.Exec(common.NewStatement("INSERT INTO t VALUES (?)", 1))
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
	starter IStarter,
	logger pslog.Logger,
) IClient {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	transport.Configure(config)

	return &rpcClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
		starter:    starter,
		logger:     logger,
	}
}

type rpcClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	starter    IStarter
	logger     pslog.Logger
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *rpcClient) Exec(stmt common.Statement) (*Result, error) {
	resp, err := c.invoke(common.NewExecRequest(uuid.NewString(), stmt), true)
	if err != nil {
		return nil, err
	}
	return newResult(resp), nil
}

func (c *rpcClient) ExecBatch(stmts []common.Statement, mode common.TransactionMode) (*Result, error) {
	resp, err := c.invoke(common.NewExecBatchRequest(uuid.NewString(), stmts, mode), true)
	if err != nil {
		return nil, err
	}
	return newResult(resp), nil
}

func (c *rpcClient) Ping() bool {
	_, err := c.invoke(common.NewPingRequest(uuid.NewString()), false)
	return err == nil
}

func (c *rpcClient) Rev() (uint64, error) {
	resp, err := c.invoke(common.NewPingRequest(uuid.NewString()), false)
	if err != nil {
		return 0, err
	}
	return resp.Rev, nil
}

func (c *rpcClient) Maintenance(op common.MaintenanceOp) error {
	_, err := c.invoke(common.NewMaintenanceRequest(uuid.NewString(), op), true)
	return err
}

func (c *rpcClient) Shutdown() error {
	_, err := c.invoke(common.NewShutdownRequest(uuid.NewString()), false)
	return err
}

func (c *rpcClient) Disconnect() error {
	_, err := c.invoke(common.NewDisconnectRequest(uuid.NewString()), false)

	// the daemon hangs up after answering a disconnect, so the connection
	// that carried it must not be reused for a later call
	if cerr := c.transport.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *rpcClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// invoke performs one request/response exchange. When the channel is down
// and autoStart is set, the client runs exactly one start-and-retry cycle:
// the daemon's replay guard makes the retry safe because the request keeps
// its correlation ID.
func (c *rpcClient) invoke(req *common.Request, autoStart bool) (*common.Response, error) {
	reqBytes, err := c.serializer.SerializeRequest(req)
	if err != nil {
		return nil, common.WrapError(common.ErrKindProtocol, "failed to serialize request", err)
	}

	respBytes, err := c.transport.Send(reqBytes)
	if err != nil && autoStart && c.starter != nil && common.IsKind(err, common.ErrKindConnectionLost) {
		c.logger.Info("client.autostart", "kind", req.Kind.String(), "id", req.ID)
		if serr := c.starter.Start(); serr != nil {
			return nil, common.WrapError(common.ErrKindDaemonUnavailable, "daemon start failed", serr)
		}
		respBytes, err = c.transport.Send(reqBytes)
	}
	if err != nil {
		return nil, err
	}

	resp := &common.Response{}
	if err := c.serializer.DeserializeResponse(respBytes, resp); err != nil {
		return nil, common.WrapError(common.ErrKindProtocol, "failed to deserialize response", err)
	}

	// a response must correlate to the request it answers
	if resp.ID != req.ID {
		return nil, common.NewError(common.ErrKindProtocol,
			"response ID does not match request ID")
	}

	if !resp.Ok {
		return nil, respError(resp)
	}
	return resp, nil
}

// respError converts an error response document into a client-side error.
func respError(resp *common.Response) error {
	if resp.Error == nil {
		return common.NewError(common.ErrKindProtocol, "error response without error info")
	}
	return &common.Error{
		Kind:           common.ErrKind(resp.Error.Code),
		Message:        resp.Error.Message,
		StatementIndex: resp.Error.StatementIndex,
	}
}

// newResult maps a success response to a Result.
func newResult(resp *common.Response) *Result {
	return &Result{
		Rev:          resp.Rev,
		RowsAffected: resp.RowsAffected,
		Succeeded:    resp.Succeeded,
		Columns:      resp.Columns,
		Rows:         resp.Rows,
	}
}
