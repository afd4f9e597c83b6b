package session

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/marmos91/cryptoolstore/internal/protocol/store/transfer"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

// ErrorKind classifies a failure by what the session does about it.
type ErrorKind int

const (
	// KindInternal is a server-side failure. It is logged, the client gets
	// the route's generic failure response and the session continues.
	KindInternal ErrorKind = iota

	// KindProtocol is a malformed frame or payload. The session closes.
	KindProtocol

	// KindTransport is a failed or closed connection. The session closes.
	KindTransport

	// KindLockout is a login from a locked address. The session closes
	// without a response.
	KindLockout

	// KindTransfer is an aborted transfer whose response was already sent.
	// The session continues.
	KindTransfer
)

func (k ErrorKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	case KindLockout:
		return "lockout"
	case KindTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Closes reports whether an error of this kind ends the session.
func (k ErrorKind) Closes() bool {
	return k == KindProtocol || k == KindTransport || k == KindLockout
}

// Error is a classified session failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// errLoggedOut ends Serve without an error.
var errLoggedOut = errors.New("client logged out")

// classify wraps err in an *Error. Already classified errors are returned
// as they are.
func classify(op string, err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}

	kind := KindInternal
	switch {
	case errors.Is(err, auth.ErrLockedOut):
		kind = KindLockout
	case wire.IsProtocolError(err):
		kind = KindProtocol
	case errors.Is(err, transfer.ErrAborted):
		kind = KindTransfer
	case isTransportError(err):
		kind = KindTransport
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// isTransportError reports failures of the message channel itself. Store
// errors that happen to wrap network errors stay internal.
func isTransportError(err error) bool {
	return errors.Is(err, transfer.ErrConnection)
}

// receiveError classifies a failed Receive.
func receiveError(err error) *Error {
	if wire.IsProtocolError(err) {
		return &Error{Kind: KindProtocol, Op: "receive", Err: err}
	}
	return &Error{Kind: KindTransport, Op: "receive", Err: err}
}

// isClosed reports a peer that went away between messages.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
