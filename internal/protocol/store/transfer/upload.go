package transfer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// UploadRequest describes an authorized upload.
type UploadRequest struct {
	// Key is the canonical blob key the file replaces on success.
	Key string

	// Size is the size the client declared up front.
	Size int64

	// MaxSize bounds Size. Zero means unbounded.
	MaxSize int64
}

// CommitFunc records a committed blob in the store.
type CommitFunc func(ctx context.Context) error

// Upload runs the server side of an upload.
//
// It tells the client the upload is authorized, then receives exactly
// req.Size bytes into a staging file, acking every chunk. When the last
// byte has arrived the staging file replaces the blob at req.Key and
// commit is called. The staging file is always removed.
//
// Returns an error wrapping ErrAborted when the client sent too much data
// or an unexpected message, or stopped the upload. The previous blob is
// left untouched in every such case.
func Upload(ctx context.Context, conn Conn, blobs blobstore.Store, req UploadRequest, commit CommitFunc) (Result, error) {
	var res Result

	if req.Size < 0 || (req.MaxSize > 0 && req.Size > req.MaxSize) {
		if err := conn.Send(&message.ResponseUploadDownloadData{Message: MsgInvalidSize}); err != nil {
			return res, connErr("send size refusal", err)
		}
		return res, aborted("declared size %d out of range", req.Size)
	}

	tmpPath := filepath.Join(blobs.TempDir(), fmt.Sprintf("%s.%s.part", path.Base(req.Key), uuid.NewString()))
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return res, fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		_ = f.Close()
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.WarnCtx(ctx, "Failed to remove staging file", logger.KeyPath, tmpPath, logger.Err(err))
		}
	}()

	if err := conn.Send(&message.ResponseUploadDownloadData{Success: true, Message: MsgAuthorized}); err != nil {
		return res, connErr("send authorization", err)
	}

	for res.Bytes < req.Size {
		msg, err := conn.Receive()
		if err != nil {
			return res, connErr("receive chunk", err)
		}

		switch m := msg.(type) {
		case *message.UploadDownloadData:
			res.Chunks++
			if res.Bytes+int64(len(m.Data)) > req.Size {
				logger.WarnCtx(ctx, "Client sent too much data",
					logger.KeyKey, req.Key,
					logger.KeySize, req.Size,
					logger.KeyBytesWritten, res.Bytes+int64(len(m.Data)))
				if err := conn.Send(&message.ResponseUploadDownloadData{Message: MsgTooMuchData}); err != nil {
					return res, connErr("send overflow refusal", err)
				}
				return res, aborted("upload exceeded declared size %d", req.Size)
			}
			if _, err := f.Write(m.Data); err != nil {
				return res, fmt.Errorf("write staging file: %w", err)
			}
			res.Bytes += int64(len(m.Data))
			telemetry.AddEvent(ctx, telemetry.EventChunk, telemetry.Bytes(res.Bytes))
			if err := conn.Send(&message.ResponseUploadDownloadData{Success: true, Message: MsgOK}); err != nil {
				return res, connErr("send ack", err)
			}

		case *message.StopUploadDownload:
			logger.InfoCtx(ctx, "Client stopped upload", logger.KeyKey, req.Key, logger.KeyBytesWritten, res.Bytes)
			res.Stopped = true
			return res, aborted("stopped by client")

		default:
			logger.WarnCtx(ctx, "Unexpected message during upload",
				logger.KeyKey, req.Key,
				"received", msg.Kind().String())
			if err := conn.Send(&message.ResponseUploadDownloadData{Message: MsgUnexpectedMessage}); err != nil {
				return res, connErr("send refusal", err)
			}
			return res, aborted("unexpected %s during upload", msg.Kind())
		}
	}

	if err := f.Sync(); err != nil {
		return res, fmt.Errorf("sync staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		return res, fmt.Errorf("close staging file: %w", err)
	}

	if err := blobs.Commit(ctx, req.Key, tmpPath); err != nil {
		return res, fmt.Errorf("commit %s: %w", req.Key, err)
	}
	if commit != nil {
		if err := commit(ctx); err != nil {
			return res, fmt.Errorf("record %s: %w", req.Key, err)
		}
	}

	logger.DebugCtx(ctx, "Upload committed", logger.KeyKey, req.Key, logger.KeySize, res.Bytes, logger.KeyChunks, res.Chunks)
	return res, nil
}
