package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/cryptoolstore/pkg/metrics"
)

func init() {
	metrics.RegisterBlobMetricsConstructor(func() metrics.BlobMetrics {
		return NewBlobMetrics(metrics.GetRegistry())
	})
}

// blobMetrics is the Prometheus implementation of metrics.BlobMetrics.
type blobMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
}

// NewBlobMetrics registers the blob store collectors on reg.
//
// Returns nil if reg is nil.
func NewBlobMetrics(reg prometheus.Registerer) metrics.BlobMetrics {
	if reg == nil {
		return nil
	}

	return &blobMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "blob_operations_total",
				Help:      "Total number of blob store operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "blob_operation_duration_milliseconds",
				Help:      "Duration of blob store operations in milliseconds",
				Buckets: []float64{
					1,     // 1ms - local stat
					10,    // 10ms - local rename, S3 head
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms - small S3 objects
					1000,  // 1s
					5000,  // 5s - large S3 uploads
					30000, // 30s
				},
			},
			[]string{"backend", "operation"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "blob_bytes_total",
				Help:      "Total bytes committed to or opened from the blob store",
			},
			[]string{"backend", "operation"},
		),
	}
}

func (m *blobMetrics) ObserveOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(backend, operation, status).Inc()
	m.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds() * 1000)
}

func (m *blobMetrics) RecordBytes(backend, operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.bytesTotal.WithLabelValues(backend, operation).Add(float64(bytes))
}
