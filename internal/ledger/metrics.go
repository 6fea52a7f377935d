package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes ledger activity to Prometheus. A nil *Metrics records
// nothing.
type Metrics struct {
	submissions     *prometheus.CounterVec
	blocksMined     prometheus.Counter
	miningDuration  prometheus.Histogram
	miningFailures  *prometheus.CounterVec
	persistFailures prometheus.Counter
	pending         prometheus.Gauge
	height          prometheus.Gauge
}

// NewMetrics registers the ledger collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "degreechain",
			Name:      "submissions_total",
			Help:      "Degree submissions by outcome.",
		}, []string{"result"}),
		blocksMined: f.NewCounter(prometheus.CounterOpts{
			Namespace: "degreechain",
			Name:      "blocks_mined_total",
			Help:      "Blocks sealed and appended to the chain.",
		}),
		miningDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "degreechain",
			Name:      "mining_duration_seconds",
			Help:      "Time spent searching for a nonce.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		miningFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "degreechain",
			Name:      "mining_failures_total",
			Help:      "Mining calls that sealed nothing, by reason.",
		}, []string{"reason"}),
		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "degreechain",
			Name:      "persist_failures_total",
			Help:      "State saves that failed.",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "degreechain",
			Name:      "pending_transactions",
			Help:      "Transactions waiting for a block.",
		}),
		height: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "degreechain",
			Name:      "chain_height",
			Help:      "Number of blocks in the chain, genesis included.",
		}),
	}
}

func (m *Metrics) submitted(accepted bool) {
	if m == nil {
		return
	}
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) mined(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.blocksMined.Inc()
	m.miningDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) miningFailed(reason string) {
	if m == nil {
		return
	}
	m.miningFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) observe(height, pending int) {
	if m == nil {
		return
	}
	m.height.Set(float64(height))
	m.pending.Set(float64(pending))
}
