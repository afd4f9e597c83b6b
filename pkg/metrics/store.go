package metrics

import (
	"time"
)

// Message and transfer outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
	OutcomeAborted = "aborted"
	OutcomeStopped = "stopped"
	OutcomeClosed  = "closed"
	OutcomeUnknown = "unknown"
)

// Login outcomes.
const (
	OutcomeLoginOK     = "success"
	OutcomeLoginFailed = "failure"
	OutcomeLoginLocked = "locked"
)

// Transfer directions.
const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
)

// Connection rejection and close reasons.
const (
	RejectMaxConns      = "max_connections"
	RejectTLSHandshake  = "tls_handshake"
	RejectShuttingDown  = "shutting_down"
	ClosedNormally      = "normal"
	ClosedWithError     = "error"
	ClosedAfterShutdown = "shutdown"
)

// StoreMetrics provides observability for the store server.
//
// Implementations can collect metrics about messages, logins, transfers
// and the connection lifecycle. This interface is optional: pass nil to
// disable metrics collection with zero overhead.
type StoreMetrics interface {
	// RecordMessage records one handled message.
	//
	// Parameters:
	//   - kind: message kind name (e.g., "RequestPluginList")
	//   - outcome: OutcomeOK, OutcomeDenied, OutcomeFailed, ...
	//   - duration: time from decode to response
	RecordMessage(kind string, outcome string, duration time.Duration)

	// RecordLogin records a login attempt outcome.
	RecordLogin(outcome string)

	// RecordTransfer records a finished upload or download.
	//
	// Parameters:
	//   - direction: DirectionUpload or DirectionDownload
	//   - kind: the message kind that started the transfer
	//   - outcome: OutcomeOK, OutcomeAborted, OutcomeStopped or OutcomeFailed
	//   - bytes: payload bytes moved
	//   - duration: total transfer time
	RecordTransfer(direction, kind, outcome string, bytes int64, duration time.Duration)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionRejected records a connection dropped before a
	// session started.
	RecordConnectionRejected(reason string)

	// RecordConnectionClosed records a finished session.
	RecordConnectionClosed(reason string)

	// SetLockedAddresses updates the number of addresses tracked by the
	// lockout gate.
	SetLockedAddresses(count int)
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or if
// no implementation has been linked in.
//
// Example usage:
//
//	metrics.InitRegistry()
//	m := metrics.NewStoreMetrics()
//	adapter := store.New(config, deps, m)
func NewStoreMetrics() StoreMetrics {
	if !IsEnabled() || newPrometheusStoreMetrics == nil {
		return nil
	}
	return newPrometheusStoreMetrics()
}

// newPrometheusStoreMetrics is implemented in pkg/metrics/prometheus/store.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusStoreMetrics func() StoreMetrics

// RegisterStoreMetricsConstructor registers the Prometheus store metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterStoreMetricsConstructor(constructor func() StoreMetrics) {
	newPrometheusStoreMetrics = constructor
}

// RecordMessage records a message on m if it is non-nil.
func RecordMessage(m StoreMetrics, kind, outcome string, duration time.Duration) {
	if m != nil {
		m.RecordMessage(kind, outcome, duration)
	}
}

// RecordLogin records a login outcome on m if it is non-nil.
func RecordLogin(m StoreMetrics, outcome string) {
	if m != nil {
		m.RecordLogin(outcome)
	}
}

// RecordTransfer records a transfer on m if it is non-nil.
func RecordTransfer(m StoreMetrics, direction, kind, outcome string, bytes int64, duration time.Duration) {
	if m != nil {
		m.RecordTransfer(direction, kind, outcome, bytes, duration)
	}
}

// RecordConnectionRejected records a refused connection on m if it is
// non-nil.
func RecordConnectionRejected(m StoreMetrics, reason string) {
	if m != nil {
		m.RecordConnectionRejected(reason)
	}
}
