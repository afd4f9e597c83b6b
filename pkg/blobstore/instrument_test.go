package blobstore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/blobstore/fs"
)

type observation struct {
	backend, op string
	failed      bool
}

type fakeMetrics struct {
	mu    sync.Mutex
	ops   []observation
	bytes map[string]int64
}

func (f *fakeMetrics) ObserveOperation(backend, op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, observation{backend, op, err != nil})
}

func (f *fakeMetrics) RecordBytes(_, op string, n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bytes[op] += n
}

func TestInstrumentTracesWithoutMetrics(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{Enabled: true, SampleRate: 1}, telemetry.WithExporter(exp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx := context.Background()
	inner, err := fs.New(fs.Config{Root: t.TempDir()})
	require.NoError(t, err)
	s := blobstore.Instrument(inner, "fs", nil)

	tmp := filepath.Join(s.TempDir(), "upload")
	require.NoError(t, os.WriteFile(tmp, []byte("hello"), 0o600))
	key := blobstore.ResourceDataKey(4, 2)
	require.NoError(t, s.Commit(ctx, key, tmp))
	_, _, err = s.Open(ctx, blobstore.SourceKey(9, 9))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	require.NoError(t, s.Delete(ctx, key))

	spans := exp.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, telemetry.SpanBlobCommit, spans[0].Name)
	assert.Equal(t, telemetry.SpanBlobOpen, spans[1].Name)
	assert.Equal(t, telemetry.SpanBlobDelete, spans[2].Name)
	for _, span := range spans {
		assert.Equal(t, codes.Unset, span.Status.Code, "%s: a missing blob is not an error", span.Name)
	}

	var backend, storedKey string
	for _, a := range spans[0].Attributes {
		switch string(a.Key) {
		case telemetry.AttrStoreType:
			backend = a.Value.AsString()
		case telemetry.AttrKey:
			storedKey = a.Value.AsString()
		}
	}
	assert.Equal(t, "fs", backend)
	assert.Equal(t, key, storedKey)
}

func TestInstrumentReportsOperations(t *testing.T) {
	ctx := context.Background()
	inner, err := fs.New(fs.Config{Root: t.TempDir()})
	require.NoError(t, err)
	m := &fakeMetrics{bytes: map[string]int64{}}
	s := blobstore.Instrument(inner, "fs", m)

	tmp := filepath.Join(s.TempDir(), "upload")
	require.NoError(t, os.WriteFile(tmp, []byte("hello"), 0o600))
	key := blobstore.SourceKey(1, 1)
	require.NoError(t, s.Commit(ctx, key, tmp))

	rc, size, err := s.Open(ctx, key)
	require.NoError(t, err)
	_ = rc.Close()
	assert.EqualValues(t, 5, size)

	_, err = s.Stat(ctx, blobstore.AssemblyKey(1, 1))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	require.NoError(t, s.Delete(ctx, key))

	assert.Equal(t, []observation{
		{"fs", "commit", false},
		{"fs", "open", false},
		{"fs", "stat", false},
		{"fs", "delete", false},
	}, m.ops)
	assert.EqualValues(t, 5, m.bytes["commit"])
	assert.EqualValues(t, 5, m.bytes["open"])
}
