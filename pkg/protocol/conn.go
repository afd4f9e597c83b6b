// Package protocol ties the frame codec and the message registry to a
// network connection.
package protocol

import (
	"fmt"
	"net"
	"time"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

// Timeouts bounds each blocking frame operation. Zero disables the bound.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
}

// Conn sends and receives whole messages over a stream connection.
//
// Receive must be called from a single goroutine. Send is safe for
// concurrent use.
type Conn struct {
	nc       net.Conn
	r        *wire.Reader
	w        *wire.Writer
	timeouts Timeouts
	decode   func(kind uint32, payload []byte) (message.Message, error)
}

// NewConn wraps nc. maxPayload bounds both directions (0 means the
// default).
func NewConn(nc net.Conn, maxPayload uint32, timeouts Timeouts) *Conn {
	return &Conn{
		nc:       nc,
		r:        wire.NewReader(nc, maxPayload),
		w:        wire.NewWriter(nc, maxPayload),
		timeouts: timeouts,
		decode:   message.Decode,
	}
}

// NewServerConn is NewConn for the accepting side. Kinds only a server
// sends are returned as *message.Unknown without parsing their payload.
func NewServerConn(nc net.Conn, maxPayload uint32, timeouts Timeouts) *Conn {
	c := NewConn(nc, maxPayload, timeouts)
	c.decode = message.DecodeRequest
	return c
}

// Receive reads and decodes the next message. It returns io.EOF when the
// peer closed the connection and an error wrapping wire.ErrProtocol when
// the frame or its payload is malformed.
func (c *Conn) Receive() (message.Message, error) {
	if c.timeouts.Read > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.timeouts.Read)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	h, payload, err := c.r.ReadFrame()
	if err != nil {
		return nil, err
	}
	return c.decode(h.Kind, payload)
}

// Send encodes and writes m as one frame.
func (c *Conn) Send(m message.Message) error {
	payload, err := message.Encode(m)
	if err != nil {
		return err
	}

	if c.timeouts.Write > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.timeouts.Write)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	return c.w.WriteFrame(uint32(m.Kind()), payload)
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.nc.Close()
}
