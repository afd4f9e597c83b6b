package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/pkg/metrics"
)

// find returns the metric family named name, or nil.
func find(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestNewStoreMetricsNilRegistry(t *testing.T) {
	assert.Nil(t, NewStoreMetrics(nil))
}

func TestRecordMessage(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.RecordMessage("RequestPluginList", metrics.OutcomeOK, 3*time.Millisecond)
	m.RecordMessage("RequestPluginList", metrics.OutcomeOK, time.Millisecond)
	m.RecordMessage("DeletePlugin", metrics.OutcomeDenied, time.Millisecond)

	f := find(t, reg, "cryptoolstore_messages_total")
	require.NotNil(t, f)
	require.Len(t, f.GetMetric(), 2)
	for _, metric := range f.GetMetric() {
		l := labelsOf(metric)
		switch l["kind"] {
		case "RequestPluginList":
			assert.Equal(t, metrics.OutcomeOK, l["outcome"])
			assert.Equal(t, 2.0, metric.GetCounter().GetValue())
		case "DeletePlugin":
			assert.Equal(t, metrics.OutcomeDenied, l["outcome"])
			assert.Equal(t, 1.0, metric.GetCounter().GetValue())
		default:
			t.Fatalf("unexpected kind %q", l["kind"])
		}
	}

	h := find(t, reg, "cryptoolstore_message_duration_milliseconds")
	require.NotNil(t, h)
	assert.Len(t, h.GetMetric(), 2)
}

func TestRecordTransfer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.RecordTransfer(metrics.DirectionUpload, "StartUploadSourceZipfile", metrics.OutcomeOK, 1024, time.Second)
	m.RecordTransfer(metrics.DirectionUpload, "StartUploadSourceZipfile", metrics.OutcomeAborted, 0, time.Second)

	bytes := find(t, reg, "cryptoolstore_transfer_bytes_total")
	require.NotNil(t, bytes)
	require.Len(t, bytes.GetMetric(), 1)
	assert.Equal(t, 1024.0, bytes.GetMetric()[0].GetCounter().GetValue())

	total := find(t, reg, "cryptoolstore_transfers_total")
	require.NotNil(t, total)
	assert.Len(t, total.GetMetric(), 2)
}

func TestConnectionGaugesAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.RecordConnectionAccepted()
	m.RecordConnectionAccepted()
	m.RecordConnectionRejected(metrics.RejectMaxConns)
	m.SetActiveConnections(1)
	m.RecordConnectionClosed(metrics.ClosedNormally)
	m.SetLockedAddresses(4)
	m.RecordLogin(metrics.OutcomeLoginLocked)

	assert.Equal(t, 2.0, find(t, reg, "cryptoolstore_connections_accepted_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, reg, "cryptoolstore_active_connections").GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 4.0, find(t, reg, "cryptoolstore_lockout_tracked_addresses").GetMetric()[0].GetGauge().GetValue())

	rejected := find(t, reg, "cryptoolstore_connections_rejected_total")
	require.NotNil(t, rejected)
	assert.Equal(t, metrics.RejectMaxConns, labelsOf(rejected.GetMetric()[0])["reason"])

	logins := find(t, reg, "cryptoolstore_logins_total")
	require.NotNil(t, logins)
	assert.Equal(t, metrics.OutcomeLoginLocked, labelsOf(logins.GetMetric()[0])["outcome"])
}

func TestConstructorIsLinked(t *testing.T) {
	metrics.InitRegistry()
	m := metrics.NewStoreMetrics()
	require.NotNil(t, m)

	metrics.RecordLogin(m, metrics.OutcomeLoginOK)
	metrics.RecordLogin(nil, metrics.OutcomeLoginOK)

	f := find(t, metrics.GetRegistry(), "cryptoolstore_logins_total")
	require.NotNil(t, f)
	assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
}

func TestBlobMetrics(t *testing.T) {
	assert.Nil(t, NewBlobMetrics(nil))

	reg := prometheus.NewRegistry()
	m := NewBlobMetrics(reg)

	m.ObserveOperation("s3", "commit", 20*time.Millisecond, nil)
	m.ObserveOperation("s3", "commit", 5*time.Millisecond, assert.AnError)
	m.RecordBytes("s3", "commit", 4096)
	m.RecordBytes("s3", "commit", 0)

	ops := find(t, reg, "cryptoolstore_blob_operations_total")
	require.NotNil(t, ops)
	require.Len(t, ops.GetMetric(), 2)
	for _, metric := range ops.GetMetric() {
		l := labelsOf(metric)
		assert.Equal(t, "s3", l["backend"])
		assert.Equal(t, "commit", l["operation"])
		assert.Equal(t, 1.0, metric.GetCounter().GetValue(), l["status"])
	}

	bytes := find(t, reg, "cryptoolstore_blob_bytes_total")
	require.NotNil(t, bytes)
	assert.Equal(t, 4096.0, bytes.GetMetric()[0].GetCounter().GetValue())
}
