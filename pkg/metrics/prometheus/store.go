// Package prometheus implements the metrics hooks with Prometheus
// collectors. Importing it for side effects links the implementation into
// metrics.NewStoreMetrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/cryptoolstore/pkg/metrics"
)

func init() {
	metrics.RegisterStoreMetricsConstructor(func() metrics.StoreMetrics {
		return NewStoreMetrics(metrics.GetRegistry())
	})
}

// storeMetrics is the Prometheus implementation of metrics.StoreMetrics.
type storeMetrics struct {
	messagesTotal     *prometheus.CounterVec
	messageDuration   *prometheus.HistogramVec
	loginsTotal       *prometheus.CounterVec
	transfersTotal    *prometheus.CounterVec
	transferBytes     *prometheus.CounterVec
	transferDuration  *prometheus.HistogramVec
	activeConnections prometheus.Gauge
	connsAccepted     prometheus.Counter
	connsRejected     *prometheus.CounterVec
	connsClosed       *prometheus.CounterVec
	lockedAddresses   prometheus.Gauge
}

// NewStoreMetrics registers the store collectors on reg.
//
// Returns nil if reg is nil.
func NewStoreMetrics(reg prometheus.Registerer) metrics.StoreMetrics {
	if reg == nil {
		return nil
	}

	return &storeMetrics{
		messagesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "messages_total",
				Help:      "Total number of handled messages by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		messageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "message_duration_milliseconds",
				Help:      "Duration of message handling in milliseconds",
				Buckets: []float64{
					1,    // 1ms - session-only answers
					5,    // 5ms - single row queries
					25,   // 25ms
					100,  // 100ms - list queries
					500,  // 500ms
					2500, // 2.5s - bcrypt on slow hosts
				},
			},
			[]string{"kind"},
		),
		loginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		transfersTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "transfers_total",
				Help:      "Total number of file transfers by direction, kind and outcome",
			},
			[]string{"direction", "kind", "outcome"},
		),
		transferBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "transfer_bytes_total",
				Help:      "Total payload bytes moved by file transfers",
			},
			[]string{"direction"},
		),
		transferDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "transfer_duration_milliseconds",
				Help:      "Duration of file transfers in milliseconds",
				Buckets: []float64{
					10,     // 10ms - tiny files
					100,    // 100ms
					1000,   // 1s - a few chunks
					10000,  // 10s
					60000,  // 1m - large assemblies
					300000, // 5m
				},
			},
			[]string{"direction"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "active_connections",
				Help:      "Current number of client sessions",
			},
		),
		connsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "connections_accepted_total",
				Help:      "Total number of accepted TCP connections",
			},
		),
		connsRejected: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "connections_rejected_total",
				Help:      "Total number of connections dropped before a session started",
			},
			[]string{"reason"},
		),
		connsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "connections_closed_total",
				Help:      "Total number of finished sessions by reason",
			},
			[]string{"reason"},
		),
		lockedAddresses: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "lockout_tracked_addresses",
				Help:      "Number of source addresses with recent failed logins",
			},
		),
	}
}

func (m *storeMetrics) RecordMessage(kind string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(kind, outcome).Inc()
	m.messageDuration.WithLabelValues(kind).Observe(duration.Seconds() * 1000)
}

func (m *storeMetrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(outcome).Inc()
}

func (m *storeMetrics) RecordTransfer(direction, kind, outcome string, bytes int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.transfersTotal.WithLabelValues(direction, kind, outcome).Inc()
	if bytes > 0 {
		m.transferBytes.WithLabelValues(direction).Add(float64(bytes))
	}
	m.transferDuration.WithLabelValues(direction).Observe(duration.Seconds() * 1000)
}

func (m *storeMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}

func (m *storeMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connsAccepted.Inc()
}

func (m *storeMetrics) RecordConnectionRejected(reason string) {
	if m == nil {
		return
	}
	m.connsRejected.WithLabelValues(reason).Inc()
}

func (m *storeMetrics) RecordConnectionClosed(reason string) {
	if m == nil {
		return
	}
	m.connsClosed.WithLabelValues(reason).Inc()
}

func (m *storeMetrics) SetLockedAddresses(count int) {
	if m == nil {
		return
	}
	m.lockedAddresses.Set(float64(count))
}
