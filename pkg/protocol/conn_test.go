package protocol

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

func pipe(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	to := Timeouts{Read: 2 * time.Second, Write: 2 * time.Second}
	return NewConn(a, 0, to), NewConn(b, 0, to)
}

func TestConnSendReceive(t *testing.T) {
	client, server := pipe(t)

	go func() {
		_ = client.Send(&message.Login{Username: "alice", Password: "pw"})
	}()

	m, err := server.Receive()
	require.NoError(t, err)
	login, ok := m.(*message.Login)
	require.True(t, ok)
	assert.Equal(t, "alice", login.Username)
	assert.Equal(t, "pw", login.Password)
}

func TestConnReceiveAfterPeerClose(t *testing.T) {
	client, server := pipe(t)
	require.NoError(t, client.Close())

	_, err := server.Receive()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConnReceiveBadMagic(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	server := NewConn(b, 0, Timeouts{})
	go func() {
		frame := wire.Header{Kind: 0}.Encode()
		frame[3] = '!'
		_, _ = a.Write(frame[:])
	}()

	_, err := server.Receive()
	assert.True(t, wire.IsProtocolError(err))
}

func TestConnReadTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	server := NewConn(b, 0, Timeouts{Read: 20 * time.Millisecond})
	_, err := server.Receive()
	require.Error(t, err)

	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

func TestServerConnLeavesResponsesUnparsed(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	server := NewServerConn(b, 0, Timeouts{Read: 2 * time.Second})
	go func() {
		// A plugin list whose element count claims far more than the frame holds.
		h := wire.Header{Kind: uint32(message.KindResponsePluginList), PayloadSize: 4}.Encode()
		_, _ = a.Write(append(h[:], 0x7f, 0xff, 0xff, 0xff))
	}()

	m, err := server.Receive()
	require.NoError(t, err)
	u, ok := m.(*message.Unknown)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, message.KindResponsePluginList, u.Kind())
}
