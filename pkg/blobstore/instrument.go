package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
)

// Instrument wraps s so every backend call gets a trace span and, when m
// is non-nil, is reported to m under the given backend name.
func Instrument(s Store, backend string, m metrics.BlobMetrics) Store {
	return &instrumented{Store: s, backend: backend, m: m}
}

type instrumented struct {
	Store
	backend string
	m       metrics.BlobMetrics
}

// observe reports the call to the metrics. ErrNotFound counts as a
// successful lookup.
func (i *instrumented) observe(op string, start time.Time, err error) {
	if i.m == nil {
		return
	}
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	i.m.ObserveOperation(i.backend, op, time.Since(start), err)
}

// finish ends span after observing the call.
func (i *instrumented) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	defer span.End()
	if !errors.Is(err, ErrNotFound) {
		telemetry.RecordError(ctx, err)
	}
	i.observe(op, start, err)
}

func (i *instrumented) recordBytes(op string, n int64) {
	if i.m != nil {
		i.m.RecordBytes(i.backend, op, n)
	}
}

func (i *instrumented) Commit(ctx context.Context, key, tempPath string) error {
	var size int64
	if info, err := os.Stat(tempPath); err == nil {
		size = info.Size()
	}

	ctx, span := telemetry.StartBlobSpan(ctx, telemetry.SpanBlobCommit, i.backend, key)
	span.SetAttributes(telemetry.Size(size))
	start := time.Now()
	err := i.Store.Commit(ctx, key, tempPath)
	i.finish(ctx, span, "commit", start, err)
	if err == nil {
		i.recordBytes("commit", size)
	}
	return err
}

func (i *instrumented) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	ctx, span := telemetry.StartBlobSpan(ctx, telemetry.SpanBlobOpen, i.backend, key)
	start := time.Now()
	rc, size, err := i.Store.Open(ctx, key)
	if err == nil {
		span.SetAttributes(telemetry.Size(size))
	}
	i.finish(ctx, span, "open", start, err)
	if err == nil {
		i.recordBytes("open", size)
	}
	return rc, size, err
}

func (i *instrumented) Stat(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	size, err := i.Store.Stat(ctx, key)
	i.observe("stat", start, err)
	return size, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.StartBlobSpan(ctx, telemetry.SpanBlobDelete, i.backend, key)
	start := time.Now()
	err := i.Store.Delete(ctx, key)
	i.finish(ctx, span, "delete", start, err)
	return err
}

func (i *instrumented) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := i.Store.HealthCheck(ctx)
	i.observe("health", start, err)
	return err
}
