package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Download streams size bytes from r to the client.
//
// Every chunk carries the total size and the cumulative offset including
// the chunk itself. After each chunk Download blocks for the client's
// answer: a positive ack continues, a negative ack or StopUploadDownload
// ends the stream quietly, and any other message aborts it without a
// response. An empty file is sent as a single empty chunk.
func Download(ctx context.Context, conn Conn, r io.Reader, size int64, chunkSize int) (Result, error) {
	var res Result
	if chunkSize <= 0 {
		chunkSize = DefaultFileBufferSize
	}
	buf := make([]byte, chunkSize)

	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("read blob: %w", err)
		}
		if n == 0 && res.Chunks > 0 {
			break
		}

		res.Bytes += int64(n)
		res.Chunks++
		chunk := &message.UploadDownloadData{
			FileSize: size,
			Offset:   res.Bytes,
			Data:     buf[:n],
		}
		if err := conn.Send(chunk); err != nil {
			return res, connErr("send chunk", err)
		}
		telemetry.AddEvent(ctx, telemetry.EventChunk, telemetry.Bytes(res.Bytes))

		reply, err := conn.Receive()
		if err != nil {
			return res, connErr("receive ack", err)
		}

		switch m := reply.(type) {
		case *message.ResponseUploadDownloadData:
			if !m.Success {
				logger.InfoCtx(ctx, "Client refused download chunk",
					logger.KeyOffset, res.Bytes,
					logger.KeyStatusMsg, m.Message)
				res.Stopped = true
				return res, nil
			}
		case *message.StopUploadDownload:
			logger.InfoCtx(ctx, "Client stopped download", logger.KeyBytesSent, res.Bytes)
			res.Stopped = true
			return res, nil
		default:
			logger.WarnCtx(ctx, "Unexpected message during download", "received", reply.Kind().String())
			return res, aborted("unexpected %s during download", reply.Kind())
		}

		if n < chunkSize || res.Bytes >= size {
			break
		}
	}

	return res, nil
}
