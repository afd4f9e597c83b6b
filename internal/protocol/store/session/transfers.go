package session

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/transfer"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ============================================================================
// Resolvers
// ============================================================================

func (s *Session) resolveStartUploadSourceZipfile(ctx context.Context, m *message.StartUploadSourceZipfile) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveStartUploadAssemblyZipfile(ctx context.Context, m *message.StartUploadAssemblyZipfile) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveStartUploadResourceDataFile(ctx context.Context, m *message.StartUploadResourceDataFile) (*target, error) {
	return s.resourceDataTarget(ctx, m.ResourceData.ResourceID, m.ResourceData.ResourceVersion)
}

func (s *Session) resolveRequestDownloadSourceZipfile(ctx context.Context, m *message.RequestDownloadSourceZipfile) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveRequestDownloadAssemblyZipfile(ctx context.Context, m *message.RequestDownloadAssemblyZipfile) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveRequestDownloadResourceDataFile(ctx context.Context, m *message.RequestDownloadResourceDataFile) (*target, error) {
	return s.resourceDataTarget(ctx, m.ResourceData.ResourceID, m.ResourceData.ResourceVersion)
}

// ============================================================================
// Uploads
// ============================================================================

// handleStartUploadSourceZipfile receives a source zip. On commit the
// source moves to UPLOADED.
func (s *Session) handleStartUploadSourceZipfile(ctx context.Context, m *message.StartUploadSourceZipfile, t *target) (message.Message, error) {
	pid, ver := t.source.PluginID, t.source.PluginVersion
	key := blobstore.SourceKey(pid, ver)

	commit := func(ctx context.Context) error {
		return s.deps.Store.UpdateSourceUpload(ctx, pid, ver, path.Base(key),
			fmt.Sprintf("Uploaded by %s", s.username), time.Now().UTC())
	}
	return s.upload(ctx, m.Kind(), key, m.FileSize, commit,
		telemetry.PluginID(pid), telemetry.PluginVersion(ver))
}

func (s *Session) handleStartUploadAssemblyZipfile(ctx context.Context, m *message.StartUploadAssemblyZipfile, t *target) (message.Message, error) {
	pid, ver := t.source.PluginID, t.source.PluginVersion
	key := blobstore.AssemblyKey(pid, ver)

	commit := func(ctx context.Context) error {
		return s.deps.Store.UpdateSourceAssembly(ctx, pid, ver, path.Base(key))
	}
	return s.upload(ctx, m.Kind(), key, m.FileSize, commit,
		telemetry.PluginID(pid), telemetry.PluginVersion(ver))
}

func (s *Session) handleStartUploadResourceDataFile(ctx context.Context, m *message.StartUploadResourceDataFile, t *target) (message.Message, error) {
	rid, ver := t.resourceData.ResourceID, t.resourceData.ResourceVersion
	key := blobstore.ResourceDataKey(rid, ver)

	commit := func(ctx context.Context) error {
		return s.deps.Store.UpdateResourceDataUpload(ctx, rid, ver, path.Base(key), time.Now().UTC())
	}
	return s.upload(ctx, m.Kind(), key, m.FileSize, commit,
		telemetry.ResourceID(rid), telemetry.ResourceVersion(ver))
}

// upload runs an authorized upload. A successful upload has no final
// response; the last chunk ack ends it.
func (s *Session) upload(ctx context.Context, kind message.Kind, key string, size int64, commit transfer.CommitFunc, attrs ...attribute.KeyValue) (message.Message, error) {
	start := time.Now()
	attrs = append(attrs, telemetry.Size(size))
	ctx, span := telemetry.StartTransferSpan(ctx, metrics.DirectionUpload, key, attrs...)
	defer span.End()

	logger.InfoCtx(ctx, "Upload started", logger.KeyKey, key, logger.KeySize, size)

	res, err := transfer.Upload(ctx, s.conn, s.deps.Blobs, transfer.UploadRequest{
		Key:     key,
		Size:    size,
		MaxSize: s.cfg.MaxUploadSize,
	}, commit)

	s.finishTransfer(span, metrics.DirectionUpload, kind, start, res, err)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Upload completed",
		logger.KeyKey, key,
		logger.KeyBytesWritten, res.Bytes,
		logger.KeyChunks, res.Chunks,
		logger.KeyDurationMs, logger.Duration(start))
	return nil, nil
}

// ============================================================================
// Downloads
// ============================================================================

func (s *Session) handleRequestDownloadSourceZipfile(ctx context.Context, m *message.RequestDownloadSourceZipfile, t *target) (message.Message, error) {
	src := t.source
	if src.ZipFileName == "" {
		return &message.ResponseUploadDownloadData{Message: "No zipfile has been previously uploaded for this source"}, nil
	}
	return s.download(ctx, m.Kind(), blobstore.SourceKey(src.PluginID, src.PluginVersion),
		"Source zipfile does not exist. Please contact a CrypToolStore admin",
		telemetry.PluginID(src.PluginID), telemetry.PluginVersion(src.PluginVersion))
}

func (s *Session) handleRequestDownloadAssemblyZipfile(ctx context.Context, m *message.RequestDownloadAssemblyZipfile, t *target) (message.Message, error) {
	src := t.source
	if src.AssemblyFileName == "" {
		return &message.ResponseUploadDownloadData{Message: "No assembly zipfile has been previously uploaded for this source"}, nil
	}
	return s.download(ctx, m.Kind(), blobstore.AssemblyKey(src.PluginID, src.PluginVersion),
		"Assembly zipfile does not exist. Please contact a CrypToolStore admin",
		telemetry.PluginID(src.PluginID), telemetry.PluginVersion(src.PluginVersion))
}

func (s *Session) handleRequestDownloadResourceDataFile(ctx context.Context, m *message.RequestDownloadResourceDataFile, t *target) (message.Message, error) {
	rd := t.resourceData
	if rd.DataFilename == "" {
		return &message.ResponseUploadDownloadData{Message: "No resourcedata file has been previously uploaded for this resourcedata"}, nil
	}
	return s.download(ctx, m.Kind(), blobstore.ResourceDataKey(rd.ResourceID, rd.ResourceVersion),
		"Resourcedata file does not exist. Please contact a CrypToolStore admin",
		telemetry.ResourceID(rd.ResourceID), telemetry.ResourceVersion(rd.ResourceVersion))
}

// download streams the blob at key. missing answers a row whose file is
// gone from the blob store.
func (s *Session) download(ctx context.Context, kind message.Kind, key, missing string, attrs ...attribute.KeyValue) (message.Message, error) {
	start := time.Now()
	ctx, span := telemetry.StartTransferSpan(ctx, metrics.DirectionDownload, key, attrs...)
	defer span.End()

	rc, size, err := s.deps.Blobs.Open(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		logger.ErrorCtx(ctx, "Recorded blob is missing", logger.KeyKey, key)
		span.SetAttributes(telemetry.Outcome(metrics.OutcomeFailed))
		return &message.ResponseUploadDownloadData{Message: missing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	span.SetAttributes(telemetry.Size(size))
	logger.InfoCtx(ctx, "Download started", logger.KeyKey, key, logger.KeySize, size)

	res, err := transfer.Download(ctx, s.conn, rc, size, s.cfg.FileBufferSize)

	s.finishTransfer(span, metrics.DirectionDownload, kind, start, res, err)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Download finished",
		logger.KeyKey, key,
		logger.KeyBytesSent, res.Bytes,
		logger.KeyChunks, res.Chunks,
		"stopped", res.Stopped,
		logger.KeyDurationMs, logger.Duration(start))
	return nil, nil
}

// finishTransfer records the outcome of a transfer on its span and in
// the metrics.
func (s *Session) finishTransfer(span trace.Span, direction string, kind message.Kind, start time.Time, res transfer.Result, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, transfer.ErrAborted) && res.Stopped:
		outcome = metrics.OutcomeStopped
	case errors.Is(err, transfer.ErrAborted):
		outcome = metrics.OutcomeAborted
	case errors.Is(err, transfer.ErrConnection):
		outcome = metrics.OutcomeClosed
	case err != nil:
		outcome = metrics.OutcomeFailed
	case res.Stopped:
		outcome = metrics.OutcomeStopped
	}

	span.SetAttributes(
		telemetry.Bytes(res.Bytes),
		telemetry.Chunks(res.Chunks),
		telemetry.Outcome(outcome))
	if err != nil && outcome != metrics.OutcomeStopped {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RecordTransfer(s.deps.Metrics, direction, kind.String(), outcome, res.Bytes, time.Since(start))
}
