package client

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

// stats tracks per-method call counts and feeds the process-wide
// metrics set with request, failover, and error counters.
type stats struct {
	methods   *xsync.MapOf[string, *xsync.Counter]
	failovers *metrics.Counter
}

func newStats() *stats {
	return &stats{
		methods:   xsync.NewMapOf[string, *xsync.Counter](),
		failovers: metrics.GetOrCreateCounter("rpc_client_failovers_total"),
	}
}

func (s *stats) recordCall(method string) {
	counter, _ := s.methods.LoadOrCompute(method, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	counter.Inc()
}

func (s *stats) recordRequest(host string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`rpc_client_requests_total{endpoint=%q}`, host)).Inc()
}

func (s *stats) recordFailover() {
	s.failovers.Inc()
}

func (s *stats) recordError(kind errorKind) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`rpc_client_errors_total{kind=%q}`, kind)).Inc()
}

// methodCounts snapshots per-method call counts.
func (s *stats) methodCounts() map[string]uint64 {
	counts := make(map[string]uint64, s.methods.Size())
	s.methods.Range(func(method string, counter *xsync.Counter) bool {
		counts[method] = uint64(counter.Value())
		return true
	})
	return counts
}
