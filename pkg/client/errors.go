package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by calls on a closed client.
	ErrClosed = errors.New("client closed")

	// ErrUnexpectedReply indicates the server answered with a message of
	// the wrong kind.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// RefusedError is a negative answer from the server: a failed login, a
// denied request or a missing object. The session stays usable.
type RefusedError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *RefusedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsUnauthorized reports whether the server denied the request.
func (e *RefusedError) IsUnauthorized() bool {
	return strings.HasPrefix(e.Message, "Unauthorized") || strings.HasPrefix(e.Message, "Not authorized")
}

// ServerError carries a ServerError message. The server sends it for
// requests it cannot interpret.
type ServerError struct {
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

// IsUnauthorized reports whether err is a denial from the server.
func IsUnauthorized(err error) bool {
	var re *RefusedError
	return errors.As(err, &re) && re.IsUnauthorized()
}

func refused(op string, ok bool, msg string) error {
	if ok {
		return nil
	}
	return &RefusedError{Op: op, Message: msg}
}
