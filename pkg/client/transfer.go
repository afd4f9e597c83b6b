package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Progress is called after every chunk with the bytes moved so far and
// the total size of the file.
type Progress func(done, total int64)

// UploadSourceZip uploads the source zip of a plugin version. size must
// be the exact number of bytes r yields.
func (c *Client) UploadSourceZip(ctx context.Context, pluginID, version int32, r io.Reader, size int64, progress Progress) error {
	return c.upload(ctx, &message.StartUploadSourceZipfile{
		Source:   message.Source{PluginID: pluginID, PluginVersion: version},
		FileSize: size,
	}, r, size, progress)
}

// UploadAssemblyZip uploads the built assembly zip of a plugin version.
func (c *Client) UploadAssemblyZip(ctx context.Context, pluginID, version int32, r io.Reader, size int64, progress Progress) error {
	return c.upload(ctx, &message.StartUploadAssemblyZipfile{
		Source:   message.Source{PluginID: pluginID, PluginVersion: version},
		FileSize: size,
	}, r, size, progress)
}

// UploadResourceData uploads the file of a resource data version.
func (c *Client) UploadResourceData(ctx context.Context, resourceID, version int32, r io.Reader, size int64, progress Progress) error {
	return c.upload(ctx, &message.StartUploadResourceDataFile{
		ResourceData: message.ResourceData{ResourceID: resourceID, ResourceVersion: version},
		FileSize:     size,
	}, r, size, progress)
}

// DownloadSourceZip writes the source zip of a plugin version to w and
// returns the number of bytes written.
func (c *Client) DownloadSourceZip(ctx context.Context, pluginID, version int32, w io.Writer, progress Progress) (int64, error) {
	return c.download(ctx, &message.RequestDownloadSourceZipfile{
		Source: message.Source{PluginID: pluginID, PluginVersion: version},
	}, w, progress)
}

// DownloadAssemblyZip writes the assembly zip of a plugin version to w.
// Published assemblies can be downloaded without logging in.
func (c *Client) DownloadAssemblyZip(ctx context.Context, pluginID, version int32, w io.Writer, progress Progress) (int64, error) {
	return c.download(ctx, &message.RequestDownloadAssemblyZipfile{
		Source: message.Source{PluginID: pluginID, PluginVersion: version},
	}, w, progress)
}

// DownloadResourceData writes the file of a resource data version to w.
func (c *Client) DownloadResourceData(ctx context.Context, resourceID, version int32, w io.Writer, progress Progress) (int64, error) {
	return c.download(ctx, &message.RequestDownloadResourceDataFile{
		ResourceData: message.ResourceData{ResourceID: resourceID, ResourceVersion: version},
	}, w, progress)
}

// upload sends start, waits for the authorization and streams r in
// chunks, waiting for an ack after each. The server sends nothing after
// the last ack. Cancelling ctx between chunks stops the upload and leaves
// the previous file on the server untouched.
func (c *Client) upload(ctx context.Context, start message.Message, r io.Reader, size int64, progress Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.conn.Send(start); err != nil {
		return fmt.Errorf("send %s: %w", start.Kind(), err)
	}
	if err := c.receiveAck("upload"); err != nil {
		return err
	}

	buf := make([]byte, c.chunkSize)
	var sent int64
	for sent < size {
		if err := ctx.Err(); err != nil {
			return c.stop(err)
		}

		want := int64(len(buf))
		if rest := size - sent; rest < want {
			want = rest
		}
		n, err := io.ReadFull(r, buf[:want])
		if err != nil {
			// The server is waiting for data it will never get.
			return c.stop(fmt.Errorf("read upload data: %w", err))
		}
		sent += int64(n)

		if err := c.conn.Send(&message.UploadDownloadData{FileSize: size, Offset: sent, Data: buf[:n]}); err != nil {
			return fmt.Errorf("send chunk: %w", err)
		}
		if err := c.receiveAck("upload"); err != nil {
			return err
		}
		if progress != nil {
			progress(sent, size)
		}
	}
	return nil
}

// receiveAck reads one ResponseUploadDownloadData and turns a refusal
// into a RefusedError.
func (c *Client) receiveAck(op string) error {
	reply, err := c.conn.Receive()
	if err != nil {
		return fmt.Errorf("receive %s ack: %w", op, err)
	}
	resp, err := expect[*message.ResponseUploadDownloadData](message.KindUploadDownloadData, reply)
	if err != nil {
		return err
	}
	return refused(op, resp.Success, resp.Message)
}

// stop tells the server the running transfer is over and returns cause.
func (c *Client) stop(cause error) error {
	if err := c.conn.Send(&message.StopUploadDownload{}); err != nil {
		return errors.Join(cause, fmt.Errorf("send stop: %w", err))
	}
	return cause
}

// download sends req and writes every received chunk to w, acking each.
// The first reply is either a refusal or the first chunk. The transfer
// ends when the cumulative offset reaches the file size. A failed write
// or a cancelled ctx stops the download with StopUploadDownload.
func (c *Client) download(ctx context.Context, req message.Message, w io.Writer, progress Progress) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := c.conn.Send(req); err != nil {
		return 0, fmt.Errorf("send %s: %w", req.Kind(), err)
	}

	var written int64
	for {
		reply, err := c.conn.Receive()
		if err != nil {
			return written, fmt.Errorf("receive chunk: %w", err)
		}

		var chunk *message.UploadDownloadData
		switch m := reply.(type) {
		case *message.UploadDownloadData:
			chunk = m
		case *message.ResponseUploadDownloadData:
			return written, &RefusedError{Op: "download", Message: m.Message}
		default:
			return written, fmt.Errorf("%w: %s answered with %s", ErrUnexpectedReply, req.Kind(), reply.Kind())
		}

		if err := ctx.Err(); err != nil {
			return written, c.stop(err)
		}
		if _, err := w.Write(chunk.Data); err != nil {
			return written, c.stop(fmt.Errorf("write download data: %w", err))
		}
		written += int64(len(chunk.Data))

		if err := c.conn.Send(&message.ResponseUploadDownloadData{Success: true, Message: "OK"}); err != nil {
			return written, fmt.Errorf("send ack: %w", err)
		}
		if progress != nil {
			progress(chunk.Offset, chunk.FileSize)
		}
		if chunk.Offset >= chunk.FileSize {
			return written, nil
		}
	}
}
