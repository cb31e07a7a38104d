package prometheus

import (
	"time"

	"github.com/SscSPs/payments_engine/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	operations     *prometheus.CounterVec
	opLatency      *prometheus.HistogramVec
	activeStreams  *prometheus.GaugeVec
	streams        *prometheus.CounterVec
	streamRecords  *prometheus.CounterVec
	streamDuration *prometheus.HistogramVec
	circuitState   *prometheus.GaugeVec
	circuitOpens   *prometheus.CounterVec
	mirrorWrites   *prometheus.CounterVec
	mirrorLatency  prometheus.Histogram
}

var _ metrics.Collector = (*Collector)(nil)

// NewCollector creates the ledger metrics under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Operations processed, by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		opLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time to apply one operation",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 18),
			},
			[]string{"type"},
		),
		activeStreams: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_streams",
				Help:      "Streams currently being processed",
			},
			[]string{"kind"},
		),
		streams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Finished streams, by kind and status",
			},
			[]string{"kind", "status"},
		),
		streamRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_records_total",
				Help:      "Records read from finished streams",
			},
			[]string{"kind"},
		),
		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_duration_seconds",
				Help:      "Wall time of finished streams",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
			},
			[]string{"kind"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Times a circuit breaker opened",
			},
			[]string{"name"},
		),
		mirrorWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_writes_total",
				Help:      "Account mirror writes, by status",
			},
			[]string{"status"},
		),
		mirrorLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mirror_write_duration_seconds",
				Help:      "Account mirror write latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
		),
	}
}

// Register registers every metric with registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.operations,
		c.opLatency,
		c.activeStreams,
		c.streams,
		c.streamRecords,
		c.streamDuration,
		c.circuitState,
		c.circuitOpens,
		c.mirrorWrites,
		c.mirrorLatency,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) RecordOperation(opType string, reason string, duration time.Duration) {
	outcome := reason
	if outcome == "" {
		outcome = "accepted"
	}
	c.operations.WithLabelValues(opType, outcome).Inc()
	c.opLatency.WithLabelValues(opType).Observe(duration.Seconds())
}

func (c *Collector) RecordStreamStarted(kind string) {
	c.activeStreams.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordStreamFinished(kind string, records int, failed bool, duration time.Duration) {
	c.activeStreams.WithLabelValues(kind).Dec()
	status := "completed"
	if failed {
		status = "failed"
	}
	c.streams.WithLabelValues(kind, status).Inc()
	c.streamRecords.WithLabelValues(kind).Add(float64(records))
	c.streamDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (c *Collector) RecordCircuitState(name string, state metrics.CircuitState) {
	c.circuitState.WithLabelValues(name).Set(float64(state))
	if state == metrics.CircuitOpen {
		c.circuitOpens.WithLabelValues(name).Inc()
	}
}

func (c *Collector) RecordMirrorWrite(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	c.mirrorWrites.WithLabelValues(status).Inc()
	c.mirrorLatency.Observe(duration.Seconds())
}

// FilterCounters is read on every scrape of the transaction filter metrics.
type FilterCounters func() (queries, rejected, falsePositives uint64)

// RegisterFilter exposes the transaction filter counters on registry.
func RegisterFilter(registry prometheus.Registerer, namespace string, counters FilterCounters) error {
	read := func(pick func(q, r, fp uint64) uint64) func() float64 {
		return func() float64 { return float64(pick(counters())) }
	}
	funcs := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_filter_queries_total",
			Help:      "Transaction lookups seen by the filter",
		}, read(func(q, _, _ uint64) uint64 { return q })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_filter_rejected_total",
			Help:      "Lookups answered by the filter without touching storage",
		}, read(func(_, r, _ uint64) uint64 { return r })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_filter_false_positives_total",
			Help:      "Lookups the filter passed that storage did not find",
		}, read(func(_, _, fp uint64) uint64 { return fp })),
	}
	for _, c := range funcs {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
