// Package client speaks the CrypToolStore protocol to a store server.
//
// A Client owns one TLS connection and therefore one server session.
// Calls are serialized; a transfer holds the connection until it ends.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/cryptoolstore/pkg/protocol"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
	"github.com/marmos91/cryptoolstore/pkg/tlsutil"
)

// DefaultPort is the well-known store port.
const DefaultPort = 15151

// DefaultChunkSize is the size of the upload chunks the client sends.
const DefaultChunkSize = 1 << 20

// Options configure a Client.
type Options struct {
	// Address is host or host:port. The port defaults to DefaultPort.
	Address string

	// TLS selects the trust roots and server name.
	TLS tlsutil.ClientOptions

	// DialTimeout bounds the TCP connect and TLS handshake. Default: 10s
	DialTimeout time.Duration

	// Timeouts bounds each frame read and write. Default: 1m each
	Timeouts protocol.Timeouts

	// ChunkSize is the upload chunk size. Default: DefaultChunkSize
	ChunkSize int

	// MaxPayloadSize bounds received frames. 0 uses the protocol default.
	MaxPayloadSize uint32
}

func (o *Options) applyDefaults() {
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.Timeouts.Read == 0 {
		o.Timeouts.Read = time.Minute
	}
	if o.Timeouts.Write == 0 {
		o.Timeouts.Write = time.Minute
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
}

// Client is a connected store session.
type Client struct {
	conn      *protocol.Conn
	chunkSize int

	mu       sync.Mutex
	closed   bool
	username string
	isAdmin  bool
}

// Dial connects to the server and completes the TLS handshake.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	opts.applyDefaults()

	addr := opts.Address
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}

	tlsOpts := opts.TLS
	if tlsOpts.ServerName == "" {
		host, _, _ := net.SplitHostPort(addr)
		tlsOpts.ServerName = host
	}
	tlsConfig, err := tlsutil.ClientConfig(tlsOpts)
	if err != nil {
		return nil, err
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: opts.DialTimeout},
		Config:    tlsConfig,
	}
	dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	nc, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return NewClient(nc, opts), nil
}

// NewClient wraps an established connection. Dial is the usual entry
// point; NewClient serves callers that bring their own transport.
func NewClient(nc net.Conn, opts Options) *Client {
	opts.applyDefaults()
	return &Client{
		conn:      protocol.NewConn(nc, opts.MaxPayloadSize, opts.Timeouts),
		chunkSize: opts.ChunkSize,
	}
}

// Close closes the connection. The server ends the session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Username returns the name of the logged in developer, or "".
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// IsAdmin reports whether the logged in developer is an admin.
func (c *Client) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isAdmin
}

// Login authenticates the session. A refused login resets the session on
// the server side; after three refusals within the lockout window the
// server drops the connection.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := call[*message.ResponseLogin](ctx, c, &message.Login{
		Username: username,
		Password: password,
		UTCTime:  time.Now().UTC().Unix(),
	})
	if err != nil {
		return err
	}
	if !resp.LoginOk {
		return &RefusedError{Op: "login", Message: resp.Message}
	}

	c.mu.Lock()
	c.username = username
	c.isAdmin = resp.IsAdmin
	c.mu.Unlock()
	return nil
}

// Logout ends the session. The server closes the connection; the client
// is closed as well.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	err := c.conn.Send(&message.Logout{Username: c.username})
	c.mu.Unlock()

	closeErr := c.Close()
	if err != nil {
		return fmt.Errorf("send logout: %w", err)
	}
	return closeErr
}

// call sends req and decodes the single reply as T.
func call[T message.Message](ctx context.Context, c *Client, req message.Message) (T, error) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return zero, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if err := c.conn.Send(req); err != nil {
		return zero, fmt.Errorf("send %s: %w", req.Kind(), err)
	}
	reply, err := c.conn.Receive()
	if err != nil {
		return zero, fmt.Errorf("receive reply to %s: %w", req.Kind(), err)
	}
	return expect[T](req.Kind(), reply)
}

func expect[T message.Message](sent message.Kind, reply message.Message) (T, error) {
	if resp, ok := reply.(T); ok {
		return resp, nil
	}
	var zero T
	if se, ok := reply.(*message.ServerError); ok {
		return zero, &ServerError{Message: se.Message}
	}
	return zero, fmt.Errorf("%w: %s answered with %s", ErrUnexpectedReply, sent, reply.Kind())
}
