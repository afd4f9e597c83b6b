package metrics

import "time"

// BlobMetrics provides observability for blob store backends.
//
// This interface is optional: pass nil to disable collection.
type BlobMetrics interface {
	// ObserveOperation records a backend operation with its duration and
	// outcome.
	//
	// Parameters:
	//   - backend: "fs" or "s3"
	//   - operation: "commit", "open", "stat", "delete" or "health"
	//   - duration: time spent in the backend
	//   - err: the operation error, nil on success
	ObserveOperation(backend, operation string, duration time.Duration, err error)

	// RecordBytes records bytes committed to or opened from the backend.
	RecordBytes(backend, operation string, bytes int64)
}

// NewBlobMetrics creates a new Prometheus-backed BlobMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
//
// Example usage:
//
//	metrics.InitRegistry()
//	blobs = blobstore.Instrument(blobs, "s3", metrics.NewBlobMetrics())
func NewBlobMetrics() BlobMetrics {
	if !IsEnabled() || newPrometheusBlobMetrics == nil {
		return nil
	}
	return newPrometheusBlobMetrics()
}

var newPrometheusBlobMetrics func() BlobMetrics

// RegisterBlobMetricsConstructor registers the Prometheus blob metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterBlobMetricsConstructor(constructor func() BlobMetrics) {
	newPrometheusBlobMetrics = constructor
}
