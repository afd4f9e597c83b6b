package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/blobstore/fs"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// scriptConn replays queued client messages and records what the server sent.
type scriptConn struct {
	in   []message.Message
	sent []message.Message
}

func (c *scriptConn) Receive() (message.Message, error) {
	if len(c.in) == 0 {
		return nil, io.EOF
	}
	m := c.in[0]
	c.in = c.in[1:]
	return m, nil
}

func (c *scriptConn) Send(m message.Message) error {
	// Chunk buffers are reused between sends.
	if d, ok := m.(*message.UploadDownloadData); ok {
		cp := *d
		cp.Data = append([]byte(nil), d.Data...)
		m = &cp
	}
	c.sent = append(c.sent, m)
	return nil
}

func acks(t *testing.T, sent []message.Message) []*message.ResponseUploadDownloadData {
	t.Helper()
	out := make([]*message.ResponseUploadDownloadData, 0, len(sent))
	for _, m := range sent {
		r, ok := m.(*message.ResponseUploadDownloadData)
		require.True(t, ok, "unexpected %T", m)
		out = append(out, r)
	}
	return out
}

func chunk(s string) *message.UploadDownloadData {
	return &message.UploadDownloadData{Data: []byte(s)}
}

func newBlobs(t *testing.T) *fs.Store {
	t.Helper()
	s, err := fs.New(fs.Config{Root: t.TempDir()})
	require.NoError(t, err)
	return s
}

func blobContent(t *testing.T, s blobstore.Store, key string) string {
	t.Helper()
	rc, _, err := s.Open(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func stagingEmpty(t *testing.T, s blobstore.Store) {
	t.Helper()
	entries, err := os.ReadDir(s.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "staging files must be removed")
}

func TestUploadExactSizeCommits(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)
	key := blobstore.SourceKey(1, 1)
	conn := &scriptConn{in: []message.Message{chunk("hello "), chunk("world")}}

	committed := false
	res, err := Upload(ctx, conn, blobs, UploadRequest{Key: key, Size: 11}, func(context.Context) error {
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)
	assert.EqualValues(t, 11, res.Bytes)
	assert.Equal(t, 2, res.Chunks)

	got := acks(t, conn.sent)
	require.Len(t, got, 3)
	assert.Equal(t, MsgAuthorized, got[0].Message)
	assert.True(t, got[0].Success)
	for _, a := range got[1:] {
		assert.True(t, a.Success)
		assert.Equal(t, MsgOK, a.Message)
	}

	assert.Equal(t, "hello world", blobContent(t, blobs, key))
	stagingEmpty(t, blobs)
}

func TestUploadTooMuchDataKeepsPreviousBlob(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)
	key := blobstore.SourceKey(1, 1)

	_, err := Upload(ctx, &scriptConn{in: []message.Message{chunk("old")}}, blobs, UploadRequest{Key: key, Size: 3}, nil)
	require.NoError(t, err)

	conn := &scriptConn{in: []message.Message{chunk("ab"), chunk("cd")}}
	_, err = Upload(ctx, conn, blobs, UploadRequest{Key: key, Size: 3}, func(context.Context) error {
		t.Fatal("commit must not run")
		return nil
	})
	require.ErrorIs(t, err, ErrAborted)

	got := acks(t, conn.sent)
	require.Len(t, got, 3)
	assert.True(t, got[1].Success)
	assert.False(t, got[2].Success)
	assert.Equal(t, MsgTooMuchData, got[2].Message)

	assert.Equal(t, "old", blobContent(t, blobs, key))
	stagingEmpty(t, blobs)
}

func TestUploadStopIsSilent(t *testing.T) {
	blobs := newBlobs(t)
	conn := &scriptConn{in: []message.Message{chunk("ab"), &message.StopUploadDownload{}}}

	res, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: blobstore.AssemblyKey(2, 1), Size: 10}, nil)
	require.ErrorIs(t, err, ErrAborted)
	assert.True(t, res.Stopped)
	assert.Len(t, conn.sent, 2, "authorization and one ack, nothing for the stop")

	_, err = blobs.Stat(context.Background(), blobstore.AssemblyKey(2, 1))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	stagingEmpty(t, blobs)
}

func TestUploadUnexpectedMessage(t *testing.T) {
	blobs := newBlobs(t)
	conn := &scriptConn{in: []message.Message{&message.RequestPluginList{}}}

	_, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: blobstore.AssemblyKey(2, 1), Size: 10}, nil)
	require.ErrorIs(t, err, ErrAborted)

	got := acks(t, conn.sent)
	require.Len(t, got, 2)
	assert.False(t, got[1].Success)
	assert.Equal(t, MsgUnexpectedMessage, got[1].Message)
}

func TestUploadZeroSizeCommitsImmediately(t *testing.T) {
	blobs := newBlobs(t)
	key := blobstore.ResourceDataKey(3, 1)
	conn := &scriptConn{}

	_, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: key, Size: 0}, nil)
	require.NoError(t, err)
	require.Len(t, conn.sent, 1)

	size, err := blobs.Stat(context.Background(), key)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestUploadRejectsSize(t *testing.T) {
	for _, size := range []int64{-1, 101} {
		blobs := newBlobs(t)
		conn := &scriptConn{}
		_, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: "source/x", Size: size, MaxSize: 100}, nil)
		require.ErrorIs(t, err, ErrAborted)

		got := acks(t, conn.sent)
		require.Len(t, got, 1)
		assert.False(t, got[0].Success)
		assert.Equal(t, MsgInvalidSize, got[0].Message)
	}
}

func TestUploadConnectionLoss(t *testing.T) {
	blobs := newBlobs(t)
	conn := &scriptConn{in: []message.Message{chunk("a")}}

	_, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: "source/x", Size: 5}, nil)
	require.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, io.EOF)
	stagingEmpty(t, blobs)
}

func TestUploadCommitFailure(t *testing.T) {
	blobs := newBlobs(t)
	boom := errors.New("db down")
	conn := &scriptConn{in: []message.Message{chunk("a")}}

	_, err := Upload(context.Background(), conn, blobs, UploadRequest{Key: "source/x", Size: 1}, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAborted)
}

func okAck() *message.ResponseUploadDownloadData {
	return &message.ResponseUploadDownloadData{Success: true, Message: MsgOK}
}

func sentChunks(t *testing.T, sent []message.Message) []*message.UploadDownloadData {
	t.Helper()
	out := make([]*message.UploadDownloadData, 0, len(sent))
	for _, m := range sent {
		c, ok := m.(*message.UploadDownloadData)
		require.True(t, ok, "unexpected %T", m)
		out = append(out, c)
	}
	return out
}

func TestDownloadChunksAndOffsets(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 10)
	conn := &scriptConn{in: []message.Message{okAck(), okAck(), okAck()}}

	res, err := Download(context.Background(), conn, bytes.NewReader(data), 10, 4)
	require.NoError(t, err)
	assert.False(t, res.Stopped)
	assert.EqualValues(t, 10, res.Bytes)

	chunks := sentChunks(t, conn.sent)
	require.Len(t, chunks, 3)
	var offsets []int64
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Data), 4)
		assert.EqualValues(t, 10, c.FileSize)
		offsets = append(offsets, c.Offset)
	}
	assert.Equal(t, []int64{4, 8, 10}, offsets)
}

func TestDownloadExactMultipleHasNoTrailingChunk(t *testing.T) {
	conn := &scriptConn{in: []message.Message{okAck(), okAck(), okAck()}}
	_, err := Download(context.Background(), conn, bytes.NewReader(make([]byte, 8)), 8, 4)
	require.NoError(t, err)
	assert.Len(t, conn.sent, 2)
}

func TestDownloadEmptyFile(t *testing.T) {
	conn := &scriptConn{in: []message.Message{okAck()}}
	res, err := Download(context.Background(), conn, bytes.NewReader(nil), 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)

	chunks := sentChunks(t, conn.sent)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Data)
	assert.Zero(t, chunks[0].Offset)
}

func TestDownloadStopAfterChunk(t *testing.T) {
	tests := []struct {
		name string
		ack  message.Message
	}{
		{"stop", &message.StopUploadDownload{}},
		{"negative ack", &message.ResponseUploadDownloadData{Message: "disk full"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &scriptConn{in: []message.Message{okAck(), tt.ack}}
			res, err := Download(context.Background(), conn, bytes.NewReader(make([]byte, 20)), 20, 4)
			require.NoError(t, err)
			assert.True(t, res.Stopped)
			assert.Len(t, conn.sent, 2, "no chunk after the stop")
		})
	}
}

func TestDownloadUnexpectedAck(t *testing.T) {
	conn := &scriptConn{in: []message.Message{&message.RequestPluginList{}}}
	_, err := Download(context.Background(), conn, bytes.NewReader(make([]byte, 20)), 20, 4)
	require.ErrorIs(t, err, ErrAborted)
	assert.Len(t, conn.sent, 1)
}

func TestDownloadConnectionLoss(t *testing.T) {
	conn := &scriptConn{}
	_, err := Download(context.Background(), conn, bytes.NewReader(make([]byte, 20)), 20, 4)
	require.ErrorIs(t, err, ErrConnection)
}
