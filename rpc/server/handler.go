package server

import (
	"github.com/jellydator/ttlcache/v3"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/transport"
)

// --------------------------------------------------------------------------
// Transport Handler
// --------------------------------------------------------------------------

// registerTransportHandler wires the request dispatch into the transport.
// The handler runs on the per-connection goroutines of the transport; all
// storage work is forwarded to the executor so batches from concurrent
// connections apply in queue order.
func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(reqBytes []byte) ([]byte, transport.Verdict) {
		var req common.Request
		if err := s.serializer.DeserializeRequest(reqBytes, &req); err != nil {
			s.logger.Warn("daemon.request.malformed", "error", err.Error())
			metricMalformed.Inc()
			// the stream can no longer be trusted, answer and hang up
			resp := common.NewErrorResponse("", s.rev.Load(), string(common.ErrKindProtocol),
				"malformed request: "+err.Error(), -1)
			return s.encode(resp), transport.VerdictCloseConn
		}

		resp, verdict := s.dispatch(&req)
		return s.encode(resp), verdict
	})
}

// dispatch routes one request. Pings and disconnects are answered inline on
// the connection goroutine; everything that touches the engine goes through
// the executor queue.
func (s *RPCServer) dispatch(req *common.Request) (*common.Response, transport.Verdict) {
	metricRequests(req.Kind).Inc()

	switch req.Kind {
	case common.KindPing:
		return common.NewOkResponse(req.ID, s.rev.Load()), transport.VerdictContinue

	case common.KindDisconnect:
		return common.NewOkResponse(req.ID, s.rev.Load()), transport.VerdictCloseConn

	case common.KindShutdown:
		s.logger.Info("daemon.shutdown.requested", "id", req.ID)
		return s.submit(req), transport.VerdictShutdown

	case common.KindExec, common.KindExecBatch, common.KindMaintenance:
		if req.ID == "" {
			return s.submit(req), transport.VerdictContinue
		}
		return s.submitGuarded(req), transport.VerdictContinue

	default:
		return common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindProtocol),
			"unsupported request kind", -1), transport.VerdictContinue
	}
}

// submitGuarded runs one correlation ID at most once. A retried ID is
// answered from the replay cache; a retry arriving while its original is
// still queued or executing waits for that execution's response instead of
// enqueueing the batch a second time.
func (s *RPCServer) submitGuarded(req *common.Request) *common.Response {
	call, dup := s.inflight.LoadOrStore(req.ID, &inflightCall{done: make(chan struct{})})
	if dup {
		metricReplayHits.Inc()
		s.logger.Debug("daemon.request.coalesced", "id", req.ID)
		<-call.done
		return call.resp
	}

	// the cache check happens while the in-flight slot is held, so it cannot
	// race a completion of the same ID
	var resp *common.Response
	if item := s.replay.Get(req.ID); item != nil {
		metricReplayHits.Inc()
		s.logger.Debug("daemon.request.replayed", "id", req.ID)
		resp = item.Value()
	} else {
		resp = s.submit(req)
		s.replay.Set(req.ID, resp, ttlcache.DefaultTTL)
	}

	call.resp = resp
	close(call.done)
	s.inflight.Delete(req.ID)
	return resp
}

// submit enqueues a request for the executor and blocks until its response
// is ready. During shutdown the queue is no longer served, so blocked
// submitters are released with an error response instead.
func (s *RPCServer) submit(req *common.Request) *common.Response {
	w := &work{req: req, reply: make(chan *common.Response, 1)}

	select {
	case s.queue <- w:
	case <-s.stop:
		return common.NewErrorResponse(req.ID, s.rev.Load(), string(common.ErrKindDaemonUnavailable),
			"daemon is shutting down", -1)
	}

	select {
	case resp := <-w.reply:
		return resp
	case <-s.stop:
		// the executor drains the queue on stop, so the reply still comes
		return <-w.reply
	}
}

// encode serializes a response. Serialization of our own documents cannot
// fail in practice; if it does, no frame is written and the client runs
// into its read timeout.
func (s *RPCServer) encode(resp *common.Response) []byte {
	b, err := s.serializer.SerializeResponse(resp)
	if err != nil {
		s.logger.Error("daemon.response.encode_failed", "error", err.Error())
		return nil
	}
	return b
}
