package server

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/scribedb/scribe/lib/engine"
	"github.com/scribedb/scribe/lib/flock"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/transport"
	"pkt.systems/pslog"
)

// --------------------------------------------------------------------------
// Exit Conditions
// --------------------------------------------------------------------------

// Process exit codes of the daemon. The supervisor inspects these to tell
// a benign second start from a real failure.
const (
	ExitOK             = 0
	ExitAlreadyRunning = 2
	ExitStorageOpen    = 3
	ExitFatalStorage   = 4
)

var (
	// ErrAlreadyRunning means another daemon holds the writer lock for
	// this database. Exiting with ExitAlreadyRunning is the correct
	// reaction; the running daemon keeps serving.
	ErrAlreadyRunning = errors.New("server: daemon already running for this database")

	// ErrStorageOpen means the database file could not be opened.
	ErrStorageOpen = errors.New("server: failed to open storage")

	// ErrFatalStorage means the storage engine reported corruption. The
	// daemon stops serving so the damage does not spread.
	ErrFatalStorage = errors.New("server: fatal storage error")
)

// ExitCode maps a Serve error to the daemon's process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrAlreadyRunning):
		return ExitAlreadyRunning
	case errors.Is(err, ErrStorageOpen):
		return ExitStorageOpen
	case errors.Is(err, ErrFatalStorage):
		return ExitFatalStorage
	default:
		return 1
	}
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

const (
	defaultReplayTTL = 5 * time.Minute
	queueCapacity    = 128
)

// NewRPCServer creates a new daemon server.
// It takes a config, transport and serializer as parameters.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		unix.NewUnixServerTransport(logger),
//		serializer.NewJSONSerializer(),
//		logger,
//	)
//
//	if err := s.Serve(); err != nil {
//		os.Exit(server.ExitCode(err))
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	logger pslog.Logger,
) *RPCServer {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	if config.ReplayTTL <= 0 {
		config.ReplayTTL = defaultReplayTTL
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		logger:     logger,
		queue:      make(chan *work, queueCapacity),
		stop:       make(chan struct{}),
		execDone:   make(chan struct{}),
		replay: ttlcache.New[string, *common.Response](
			ttlcache.WithTTL[string, *common.Response](config.ReplayTTL),
		),
		inflight: xsync.NewMapOf[string, *inflightCall](),
	}
}

// RPCServer is the scribed daemon: it owns the storage engine, holds the
// exclusive writer lock and serializes all batches through one executor
// goroutine. Requests arrive over the transport from any number of client
// connections; execution order is the order requests reach the queue.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	logger     pslog.Logger

	engine engine.IEngine
	lock   *flock.Lock

	// queue carries work items to the single executor goroutine
	queue    chan *work
	stop     chan struct{}
	execDone chan struct{}

	// rev counts handled write batches; written by the executor, read by
	// connection goroutines answering pings
	rev atomic.Uint64

	// fatal is set by the executor when the engine reports corruption;
	// guarded by the executor goroutine, read after execDone is closed
	fatal error

	replay *ttlcache.Cache[string, *common.Response]

	// inflight holds one entry per correlation ID currently executing, so a
	// retry racing its own original waits for that execution instead of
	// queueing the batch a second time
	inflight *xsync.MapOf[string, *inflightCall]
}

// work is one queued request together with the channel its response is
// delivered on. The executor answers every work item exactly once.
type work struct {
	req   *common.Request
	reply chan *common.Response
}

// inflightCall lets duplicate requests wait for the execution their original
// already queued. resp is written before done is closed.
type inflightCall struct {
	done chan struct{}
	resp *common.Response
}

// Serve acquires the writer lock, opens the storage engine and serves
// requests until a shutdown request arrives or the storage fails fatally.
// It returns nil on graceful shutdown.
func (s *RPCServer) Serve() error {
	s.logger.Info("daemon.starting", "db", s.config.DBPath, "endpoint", s.config.Endpoint)
	s.logger.Debug("daemon.config", "config", s.config.String())

	// The lock, not the socket, is what guarantees a single writer.
	lock, err := flock.Acquire(s.config.DBPath + ".lock")
	if err != nil {
		if errors.Is(err, flock.ErrLocked) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("%w: %v", ErrStorageOpen, err)
	}
	s.lock = lock
	defer func() { _ = s.lock.Release() }()

	eng, err := engine.NewSQLiteEngine(s.config.DBPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageOpen, err)
	}
	s.engine = eng
	defer func() { _ = s.engine.Close() }()

	go s.replay.Start()
	defer s.replay.Stop()

	go s.runExecutor()

	if s.config.MetricsEndpoint != "" {
		s.serveMetrics()
	}

	s.registerTransportHandler()

	s.logger.Info("daemon.ready", "endpoint", s.config.Endpoint)
	err = s.transport.Listen(s.config)

	// Listen has returned: no new work can arrive. Stop the executor and
	// wait for it to drain what is already queued.
	close(s.stop)
	<-s.execDone

	if err != nil {
		return err
	}
	if s.fatal != nil {
		return s.fatal
	}

	s.logger.Info("daemon.stopped", "rev", s.rev.Load())
	return nil
}
