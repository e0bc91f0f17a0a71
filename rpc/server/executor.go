package server

import (
	"context"
	"errors"
	"time"

	"github.com/scribedb/scribe/lib/engine"
	"github.com/scribedb/scribe/rpc/common"
)

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

// runExecutor is the single goroutine that touches the storage engine.
// It applies queued work strictly in arrival order, which is what makes
// concurrent client batches serializable. On stop it drains the queue so
// every submitted request still gets its response.
func (s *RPCServer) runExecutor() {
	defer close(s.execDone)

	for {
		select {
		case w := <-s.queue:
			w.reply <- s.execute(w.req)
		case <-s.stop:
			for {
				select {
				case w := <-s.queue:
					w.reply <- s.execute(w.req)
				default:
					return
				}
			}
		}
	}
}

// execute applies one request against the engine and builds its response.
// Only called from the executor goroutine.
func (s *RPCServer) execute(req *common.Request) *common.Response {
	switch req.Kind {
	case common.KindExec, common.KindExecBatch:
		return s.executeBatch(req)
	case common.KindMaintenance:
		return s.executeMaintenance(req)
	case common.KindShutdown:
		return common.NewOkResponse(req.ID, s.rev.Load())
	default:
		return common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindProtocol),
			"request kind cannot be executed", -1)
	}
}

func (s *RPCServer) executeBatch(req *common.Request) *common.Response {
	stmts := make([]engine.Statement, len(req.Statements))
	for i, st := range req.Statements {
		stmts[i] = engine.Statement{SQL: st.SQL, Params: st.Params}
	}

	mode := engine.ModeAtomic
	if req.Mode == common.ModePerStatement {
		mode = engine.ModePerStatement
	}

	ctx, cancel := s.execContext()
	defer cancel()

	start := time.Now()
	res, err := s.engine.ExecBatch(ctx, stmts, mode)
	if err != nil {
		metricBatchesFailed.Inc()

		// per-statement batches may have committed a prefix before failing
		succeeded := 0
		if res != nil {
			succeeded = res.Succeeded
			if succeeded > 0 {
				s.rev.Add(1)
			}
		}

		index := -1
		var ee *engine.Error
		if errors.As(err, &ee) {
			index = ee.Index
		}

		if engine.IsCorruption(err) {
			s.fatalStorage(err)
		}

		s.logger.Warn("daemon.batch.failed",
			"id", req.ID, "statements", len(stmts), "index", index, "error", err.Error())

		resp := common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindEngine), err.Error(), index)
		resp.Succeeded = succeeded
		return resp
	}

	metricBatchesOK.Inc()
	s.rev.Add(1)

	s.logger.Debug("daemon.batch.applied",
		"id", req.ID, "statements", len(stmts),
		"rows_affected", res.RowsAffected, "took", time.Since(start).String())

	resp := common.NewOkResponse(req.ID, s.rev.Load())
	resp.RowsAffected = res.RowsAffected
	resp.Succeeded = res.Succeeded
	resp.Columns = res.Columns
	resp.Rows = res.Rows
	return resp
}

func (s *RPCServer) executeMaintenance(req *common.Request) *common.Response {
	ctx, cancel := s.execContext()
	defer cancel()

	var err error
	switch req.Op {
	case common.OpCheckpoint:
		err = s.engine.Checkpoint(ctx)
	case common.OpClose:
		err = s.engine.Close()
	case common.OpReopen:
		err = s.engine.Reopen(ctx)
	default:
		return common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindProtocol),
			"unknown maintenance op", -1)
	}

	if err != nil {
		if engine.IsCorruption(err) {
			s.fatalStorage(err)
		}
		s.logger.Warn("daemon.maintenance.failed", "id", req.ID, "op", req.Op.String(), "error", err.Error())
		return common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindEngine), err.Error(), -1)
	}

	s.logger.Info("daemon.maintenance.applied", "id", req.ID, "op", req.Op.String())
	return common.NewOkResponse(req.ID, s.rev.Load())
}

// execContext bounds a single engine operation with the configured timeout.
func (s *RPCServer) execContext() (context.Context, context.CancelFunc) {
	if s.config.TimeoutSecond > 0 {
		return context.WithTimeout(context.Background(), time.Duration(s.config.TimeoutSecond)*time.Second)
	}
	return context.WithCancel(context.Background())
}

// fatalStorage records a corruption error and initiates shutdown. The
// daemon must not keep accepting writes against a corrupt file.
func (s *RPCServer) fatalStorage(err error) {
	if s.fatal != nil {
		return
	}
	s.fatal = ErrFatalStorage
	s.logger.Error("daemon.storage.fatal", "error", err.Error())
	go func() { _ = s.transport.Close() }()
}
