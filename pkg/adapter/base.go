package adapter

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
)

// Defaults for BaseConfig.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultShutdownPoll     = 50 * time.Millisecond
	DefaultShutdownTimeout  = 5 * time.Second
)

// ConnectionHandler serves one accepted connection. Serve blocks until the
// peer goes away, the handler decides to close, or ctx is cancelled. The
// returned error is only logged.
type ConnectionHandler interface {
	Serve(ctx context.Context) error
}

// ConnectionFactory creates the handler for an accepted connection. conn
// has completed its TLS handshake when TLS is configured.
type ConnectionFactory interface {
	NewConnection(conn net.Conn) ConnectionHandler
}

// Worker is a background task run for the lifetime of the listener. It
// must return when ctx is cancelled.
type Worker func(ctx context.Context) error

// BaseConfig holds the listener settings.
type BaseConfig struct {
	// BindAddress is the IP address to bind to. Empty binds all interfaces.
	BindAddress string

	// Port is the TCP port to listen on. 0 picks a free port.
	Port int

	// MaxConnections limits concurrent connections. Connections above the
	// limit are closed right after accept. 0 means unlimited.
	MaxConnections int

	// HandshakeTimeout bounds the TLS handshake of a new connection.
	HandshakeTimeout time.Duration

	// ShutdownPoll is how often Stop checks the live registry.
	ShutdownPoll time.Duration

	// ShutdownTimeout is how long Stop waits for live sessions before
	// giving up on them.
	ShutdownTimeout time.Duration

	// MetricsLogInterval is the interval at which the live connection count
	// is logged. 0 disables it.
	MetricsLogInterval time.Duration
}

func (c *BaseConfig) applyDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.ShutdownPoll <= 0 {
		c.ShutdownPoll = DefaultShutdownPoll
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// LiveConn is an entry of the live registry.
type LiveConn struct {
	ID         string
	RemoteAddr string
	Accepted   time.Time
	conn       net.Conn
}

// BaseAdapter owns the listener, the accept loop and the live registry of
// connections.
//
// Every accepted connection runs in its own goroutine. It is registered
// before its handler starts and unregistered in a deferred cleanup, so the
// registry always reflects the sessions still running. Stop closes the
// listener, cancels the context handed to handlers, and polls the registry
// until it is empty or ShutdownTimeout passes. Sessions still running
// after that are logged and left to end on their own I/O timeouts.
//
// All exported methods are safe for concurrent use.
type BaseAdapter struct {
	Config BaseConfig

	protocolName string
	tlsConfig    *tls.Config
	metrics      metrics.StoreMetrics

	listener   net.Listener
	listenerMu sync.RWMutex

	// ListenerReady is closed once the listener accepts connections.
	ListenerReady chan struct{}

	live      sync.Map // conn id -> *LiveConn
	liveCount atomic.Int32
	connWG    sync.WaitGroup

	connSemaphore chan struct{}

	running      atomic.Bool
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// sessionCtx is handed to every handler and cancelled on shutdown.
	sessionCtx    context.Context
	cancelSession context.CancelFunc

	workers      []namedWorker
	workerCtx    context.Context
	cancelWorker context.CancelFunc
	workerWG     sync.WaitGroup
}

type namedWorker struct {
	name string
	fn   Worker
}

// NewBaseAdapter creates a stopped adapter. tlsConfig may be nil, in which
// case connections are served in the clear.
func NewBaseAdapter(config BaseConfig, protocol string, tlsConfig *tls.Config, m metrics.StoreMetrics) *BaseAdapter {
	config.applyDefaults()

	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug(protocol+" connection limit", "max_connections", config.MaxConnections)
	} else {
		logger.Debug(protocol+" connection limit", "max_connections", "unlimited")
	}

	sessionCtx, cancelSession := context.WithCancel(context.Background())
	workerCtx, cancelWorker := context.WithCancel(context.Background())

	return &BaseAdapter{
		Config:        config,
		protocolName:  protocol,
		tlsConfig:     tlsConfig,
		metrics:       m,
		ListenerReady: make(chan struct{}),
		connSemaphore: connSemaphore,
		shutdown:      make(chan struct{}),
		sessionCtx:    sessionCtx,
		cancelSession: cancelSession,
		workerCtx:     workerCtx,
		cancelWorker:  cancelWorker,
	}
}

// AddWorker registers a background task started by ServeWithFactory and
// joined by Stop. It must be called before ServeWithFactory.
func (b *BaseAdapter) AddWorker(name string, fn Worker) {
	b.workers = append(b.workers, namedWorker{name: name, fn: fn})
}

// ServeWithFactory listens and runs the accept loop until ctx is cancelled
// or Stop is called. It returns nil on shutdown and an error if the
// listener cannot be created.
func (b *BaseAdapter) ServeWithFactory(ctx context.Context, factory ConnectionFactory) error {
	listenAddr := net.JoinHostPort(b.Config.BindAddress, fmt.Sprintf("%d", b.Config.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to create %s listener on %s: %w", b.protocolName, listenAddr, err)
	}

	b.listenerMu.Lock()
	b.listener = listener
	b.listenerMu.Unlock()
	b.running.Store(true)
	close(b.ListenerReady)

	if b.tlsConfig == nil {
		logger.Warn(b.protocolName+" server listening without TLS", logger.KeyAddress, listener.Addr().String())
	} else {
		logger.Info(b.protocolName+" server listening", logger.KeyAddress, listener.Addr().String())
	}

	go func() {
		select {
		case <-ctx.Done():
			logger.Info(b.protocolName+" shutdown signal received", logger.Err(ctx.Err()))
			b.initiateShutdown()
		case <-b.shutdown:
		}
	}()

	b.startWorkers()
	if b.Config.MetricsLogInterval > 0 {
		b.startWorker("metrics-log", b.logMetrics)
	}

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-b.shutdown:
				return b.drain(context.Background())
			default:
				logger.Debug("Error accepting "+b.protocolName+" connection", logger.Err(err))
				continue
			}
		}

		if !b.running.Load() {
			b.reject(raw, metrics.RejectShuttingDown)
			continue
		}
		if !b.acquire() {
			b.reject(raw, metrics.RejectMaxConns)
			continue
		}

		if tcp, ok := raw.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("Failed to set TCP_NODELAY", logger.Err(err))
			}
		}

		lc := &LiveConn{
			ID:         uuid.NewString(),
			RemoteAddr: raw.RemoteAddr().String(),
			Accepted:   time.Now(),
			conn:       raw,
		}
		b.register(lc)
		go b.serveConn(factory, lc)
	}
}

func (b *BaseAdapter) register(lc *LiveConn) {
	b.connWG.Add(1)
	b.live.Store(lc.ID, lc)
	n := b.liveCount.Add(1)

	if b.metrics != nil {
		b.metrics.RecordConnectionAccepted()
		b.metrics.SetActiveConnections(n)
	}
	logger.Debug(b.protocolName+" connection accepted",
		logger.KeyConnID, lc.ID,
		logger.KeyAddress, lc.RemoteAddr,
		logger.KeyActiveConns, n)
}

func (b *BaseAdapter) unregister(lc *LiveConn, reason string) {
	b.live.Delete(lc.ID)
	n := b.liveCount.Add(-1)
	b.release()
	b.connWG.Done()

	if b.metrics != nil {
		b.metrics.RecordConnectionClosed(reason)
		b.metrics.SetActiveConnections(n)
	}
	logger.Debug(b.protocolName+" connection closed",
		logger.KeyConnID, lc.ID,
		logger.KeyAddress, lc.RemoteAddr,
		logger.KeyActiveConns, n)
}

// acquire takes a connection slot without waiting.
func (b *BaseAdapter) acquire() bool {
	if b.connSemaphore == nil {
		return true
	}
	select {
	case b.connSemaphore <- struct{}{}:
		return true
	default:
		return false
	}
}

func (b *BaseAdapter) reject(conn net.Conn, reason string) {
	metrics.RecordConnectionRejected(b.metrics, reason)
	logger.Debug(b.protocolName+" connection rejected", logger.KeyAddress, conn.RemoteAddr().String(), "reason", reason)
	_ = conn.Close()
}

func (b *BaseAdapter) release() {
	if b.connSemaphore != nil {
		<-b.connSemaphore
	}
}

// serveConn runs the handshake and the handler of one connection.
func (b *BaseAdapter) serveConn(factory ConnectionFactory, lc *LiveConn) {
	reason := metrics.ClosedNormally
	defer func() {
		if r := recover(); r != nil {
			reason = metrics.ClosedWithError
			logger.Error(b.protocolName+" connection panicked",
				logger.KeyConnID, lc.ID,
				logger.KeyAddress, lc.RemoteAddr,
				"panic", r,
				"stack", string(debug.Stack()))
		}
		_ = lc.conn.Close()
		b.unregister(lc, reason)
	}()

	clientIP := lc.RemoteAddr
	if host, _, err := net.SplitHostPort(lc.RemoteAddr); err == nil {
		clientIP = host
	}
	ctx := logger.WithContext(b.sessionCtx, logger.NewLogContext(lc.ID, clientIP))

	conn := lc.conn
	if b.tlsConfig != nil {
		tlsConn, err := b.handshake(ctx, lc.conn)
		if err != nil {
			reason = metrics.ClosedWithError
			metrics.RecordConnectionRejected(b.metrics, metrics.RejectTLSHandshake)
			logger.DebugCtx(ctx, "TLS handshake failed", logger.Err(err))
			return
		}
		conn = tlsConn
	}

	if err := factory.NewConnection(conn).Serve(ctx); err != nil {
		reason = metrics.ClosedWithError
		if ctx.Err() != nil {
			reason = metrics.ClosedAfterShutdown
		}
		logger.DebugCtx(ctx, "Connection handler returned", logger.Err(err))
		return
	}
	if ctx.Err() != nil {
		reason = metrics.ClosedAfterShutdown
	}
}

func (b *BaseAdapter) handshake(ctx context.Context, raw net.Conn) (*tls.Conn, error) {
	tlsConn := tls.Server(raw, b.tlsConfig)
	if err := raw.SetDeadline(time.Now().Add(b.Config.HandshakeTimeout)); err != nil {
		return nil, fmt.Errorf("set handshake deadline: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	if err := raw.SetDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("clear handshake deadline: %w", err)
	}
	return tlsConn, nil
}

func (b *BaseAdapter) startWorkers() {
	for _, w := range b.workers {
		b.startWorker(w.name, w.fn)
	}
}

func (b *BaseAdapter) startWorker(name string, fn Worker) {
	b.workerWG.Add(1)
	go func() {
		defer b.workerWG.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(b.protocolName+" worker panicked", "worker", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		if err := fn(b.workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn(b.protocolName+" worker stopped", "worker", name, logger.Err(err))
		}
	}()
}

// initiateShutdown flips the running flag, closes the listener and cancels
// the handler and worker contexts. Safe to call more than once.
func (b *BaseAdapter) initiateShutdown() {
	b.shutdownOnce.Do(func() {
		logger.Debug(b.protocolName + " shutdown initiated")
		b.running.Store(false)
		close(b.shutdown)

		b.listenerMu.Lock()
		if b.listener != nil {
			if err := b.listener.Close(); err != nil {
				logger.Debug("Error closing "+b.protocolName+" listener", logger.Err(err))
			}
		}
		b.listenerMu.Unlock()

		b.cancelSession()
		b.cancelWorker()
	})
}

// drain polls the live registry until it empties, ShutdownTimeout passes
// or ctx is done, then joins the workers. Remaining sessions are logged,
// not killed.
func (b *BaseAdapter) drain(ctx context.Context) error {
	deadline := time.NewTimer(b.Config.ShutdownTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(b.Config.ShutdownPoll)
	defer ticker.Stop()

	var err error
wait:
	for b.liveCount.Load() > 0 {
		select {
		case <-ticker.C:
		case <-deadline.C:
			break wait
		case <-ctx.Done():
			err = ctx.Err()
			break wait
		}
	}

	if remaining := b.liveCount.Load(); remaining > 0 {
		logger.Warn(b.protocolName+" shutdown: sessions still running",
			logger.KeyActiveConns, remaining,
			"timeout", b.Config.ShutdownTimeout)
		b.live.Range(func(_, v any) bool {
			lc := v.(*LiveConn)
			logger.Debug("Session still running",
				logger.KeyConnID, lc.ID,
				logger.KeyAddress, lc.RemoteAddr,
				"age", time.Since(lc.Accepted).String())
			return true
		})
	} else {
		logger.Info(b.protocolName + " shutdown complete: all sessions closed")
	}

	b.workerWG.Wait()
	return err
}

// Stop initiates shutdown and waits for live sessions as described on
// BaseAdapter. It returns ctx.Err() if ctx ends first and nil otherwise,
// even if sessions remain. Stop may be called more than once.
func (b *BaseAdapter) Stop(ctx context.Context) error {
	b.initiateShutdown()
	if ctx == nil {
		ctx = context.Background()
	}
	return b.drain(ctx)
}

// Wait blocks until every connection goroutine has returned.
func (b *BaseAdapter) Wait() {
	b.connWG.Wait()
}

func (b *BaseAdapter) logMetrics(ctx context.Context) error {
	ticker := time.NewTicker(b.Config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			logger.Info(b.protocolName+" metrics", logger.KeyActiveConns, b.liveCount.Load())
		}
	}
}

// Running reports whether the listener is accepting connections.
func (b *BaseAdapter) Running() bool {
	return b.running.Load()
}

// ActiveConnections returns the number of live connections.
func (b *BaseAdapter) ActiveConnections() int32 {
	return b.liveCount.Load()
}

// LiveConnections returns a snapshot of the live registry.
func (b *BaseAdapter) LiveConnections() []LiveConn {
	var out []LiveConn
	b.live.Range(func(_, v any) bool {
		lc := v.(*LiveConn)
		out = append(out, LiveConn{ID: lc.ID, RemoteAddr: lc.RemoteAddr, Accepted: lc.Accepted})
		return true
	})
	return out
}

// ListenerAddr blocks until the listener is ready and returns its address.
func (b *BaseAdapter) ListenerAddr() string {
	<-b.ListenerReady

	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()

	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Port returns the configured TCP port.
func (b *BaseAdapter) Port() int {
	return b.Config.Port
}

// Protocol returns the human-readable protocol name.
func (b *BaseAdapter) Protocol() string {
	return b.protocolName
}
