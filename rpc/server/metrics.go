package server

import (
	"fmt"
	"net/http"

	vmetrics "github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricBatchesOK     = vmetrics.NewCounter(`scribed_batches_total{status="ok"}`)
	metricBatchesFailed = vmetrics.NewCounter(`scribed_batches_total{status="error"}`)
	metricMalformed     = vmetrics.NewCounter(`scribed_requests_malformed_total`)
	metricReplayHits    = vmetrics.NewCounter(`scribed_replay_hits_total`)
)

// metricRequests returns the per-kind request counter.
func metricRequests(kind fmt.Stringer) *vmetrics.Counter {
	return vmetrics.GetOrCreateCounter(fmt.Sprintf(`scribed_requests_total{kind=%q}`, kind.String()))
}

// serveMetrics exposes the Prometheus endpoint when one is configured. The
// endpoint is diagnostic only; its failure never takes the daemon down.
func (s *RPCServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		vmetrics.WritePrometheus(w, true)
	})

	go func() {
		s.logger.Info("daemon.metrics.listening", "endpoint", s.config.MetricsEndpoint)
		if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
			s.logger.Warn("daemon.metrics.failed", "error", err.Error())
		}
	}()
}
