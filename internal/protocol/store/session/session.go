// Package session implements the per-connection state machine of the
// store protocol.
//
// A Session owns one message channel. It starts unauthenticated, reads
// one request at a time, checks it against the access rule of its kind,
// runs the handler and sends exactly one response. Upload and download
// requests hand the channel to the transfer package until the transfer
// ends.
//
// Handler errors are classified (see ErrorKind): protocol, transport and
// lockout failures close the session; aborted transfers and internal
// failures are answered and the session continues.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/transfer"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// DefaultMaxIconSize bounds plugin icons.
const DefaultMaxIconSize = 64 * 1024

// Config holds the per-session limits.
type Config struct {
	// MaxIconSize bounds the icon of a created or updated plugin.
	MaxIconSize int

	// MaxUploadSize bounds the declared size of an upload. Zero means
	// unbounded.
	MaxUploadSize int64

	// FileBufferSize is the largest chunk sent during a download.
	FileBufferSize int
}

func (c *Config) applyDefaults() {
	if c.MaxIconSize <= 0 {
		c.MaxIconSize = DefaultMaxIconSize
	}
	if c.FileBufferSize <= 0 {
		c.FileBufferSize = transfer.DefaultFileBufferSize
	}
}

// Deps are the collaborators shared by every session of a server.
type Deps struct {
	Store   store.Store
	Blobs   blobstore.Store
	Auth    *auth.Authenticator
	Metrics metrics.StoreMetrics
}

// Session is the state of one client connection.
//
// A Session is driven by a single goroutine and is not safe for
// concurrent use.
type Session struct {
	conn       transfer.Conn
	remoteAddr string
	cfg        Config
	deps       Deps

	username      string
	authenticated bool
	admin         bool
}

// New creates an unauthenticated session reading from conn. remoteAddr is
// the peer address the lockout gate is keyed on.
func New(conn transfer.Conn, remoteAddr string, cfg Config, deps Deps) *Session {
	cfg.applyDefaults()
	return &Session{
		conn:       conn,
		remoteAddr: remoteAddr,
		cfg:        cfg,
		deps:       deps,
		username:   models.AnonymousUsername,
	}
}

// Username returns the session user, "anonymous" before login.
func (s *Session) Username() string { return s.username }

// Authenticated reports whether a login succeeded.
func (s *Session) Authenticated() bool { return s.authenticated }

// IsAdmin reports whether the logged in developer is an admin.
func (s *Session) IsAdmin() bool { return s.admin }

func (s *Session) reset() {
	s.username = models.AnonymousUsername
	s.authenticated = false
	s.admin = false
}

// Serve runs the request loop until the client leaves, the context is
// cancelled or a failure closes the session.
//
// Returns nil when the client closed the connection or logged out, and an
// *Error otherwise.
func (s *Session) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			logger.DebugCtx(ctx, "Session stopping on shutdown")
			return nil
		default:
		}

		msg, err := s.conn.Receive()
		if err != nil {
			if isClosed(err) {
				logger.DebugCtx(ctx, "Client closed connection")
				return nil
			}
			return receiveError(err)
		}

		if err := s.Handle(ctx, msg); err != nil {
			if errors.Is(err, errLoggedOut) {
				logger.DebugCtx(ctx, "Client logged out")
				return nil
			}
			return err
		}
	}
}

// Handle processes one request. It returns an error only when the session
// must end.
func (s *Session) Handle(ctx context.Context, msg message.Message) error {
	start := time.Now()
	kind := msg.Kind()

	ctx, span := telemetry.StartMessageSpan(ctx, kind.String(), uint32(kind),
		telemetry.ClientAddr(s.remoteAddr),
		telemetry.Username(s.username),
		telemetry.Admin(s.admin))
	defer span.End()

	if lc := logger.FromContext(ctx); lc != nil {
		lc = lc.WithKind(kind.String()).WithUser(s.username)
		ctx = logger.WithContext(ctx, lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))
	}

	logger.DebugCtx(ctx, "Received message", "msg", msg)

	resp, outcome, err := s.dispatch(ctx, msg)
	if resp != nil {
		if sendErr := s.conn.Send(resp); sendErr != nil {
			outcome = metrics.OutcomeClosed
			err = &Error{Kind: KindTransport, Op: "send " + resp.Kind().String(), Err: sendErr}
		}
	}

	span.SetAttributes(telemetry.Outcome(outcome))
	if err != nil && !errors.Is(err, errLoggedOut) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RecordMessage(s.deps.Metrics, kind.String(), outcome, time.Since(start))

	return err
}

// dispatch runs the route of msg and decides the response.
func (s *Session) dispatch(ctx context.Context, msg message.Message) (message.Message, string, error) {
	kind := msg.Kind()

	r, ok := routes[kind]
	if !ok {
		if isTransferMessage(kind) {
			logger.WarnCtx(ctx, "Transfer message outside of a transfer")
			return &message.ServerError{Message: msgOutsideTransfer}, metrics.OutcomeUnknown, nil
		}
		logger.WarnCtx(ctx, "Unknown message kind", logger.KeyKind, uint32(kind))
		return &message.ServerError{Message: fmt.Sprintf("Unknown type of message: %d", uint32(kind))}, metrics.OutcomeUnknown, nil
	}

	t, allowed, err := s.authorize(ctx, r, msg)
	if err != nil {
		return s.fail(ctx, r, "resolve "+r.name, err)
	}
	if !allowed {
		text := r.denied
		if t == nil && s.admin && r.missing != "" {
			text = r.missing
		}
		logger.InfoCtx(ctx, "Request denied", logger.KeyStatusMsg, text)
		telemetry.SetAttributes(ctx, telemetry.StatusMsg(text))
		return r.reply(text), metrics.OutcomeDenied, nil
	}

	resp, err := r.handle(ctx, s, msg, t)
	if err != nil {
		return s.fail(ctx, r, r.name, err)
	}
	return resp, metrics.OutcomeOK, nil
}

// fail turns a handler error into the session's reaction.
func (s *Session) fail(ctx context.Context, r *route, op string, err error) (message.Message, string, error) {
	if errors.Is(err, errLoggedOut) {
		return nil, metrics.OutcomeOK, err
	}

	e := classify(op, err)
	switch e.Kind {
	case KindTransfer:
		logger.InfoCtx(ctx, "Transfer aborted", logger.Err(err))
		return nil, metrics.OutcomeAborted, nil
	case KindInternal:
		logger.ErrorCtx(ctx, "Request failed", logger.KeyStatusMsg, r.failed, logger.Err(err))
		telemetry.RecordError(ctx, err)
		return r.reply(r.failed), metrics.OutcomeFailed, nil
	default:
		return nil, metrics.OutcomeClosed, e
	}
}

const msgOutsideTransfer = "Unexpected message outside of a transfer"

func isTransferMessage(k message.Kind) bool {
	switch k {
	case message.KindUploadDownloadData, message.KindResponseUploadDownloadData, message.KindStopUploadDownload:
		return true
	}
	return false
}
