// Package transfer implements the in-band file transfer sub-protocol.
//
// A transfer borrows the session's message channel. Uploads are acked
// chunk by chunk with ResponseUploadDownloadData; downloads wait for the
// client's ack after every chunk before sending the next one. Either side
// may end the exchange with StopUploadDownload.
//
// Errors returned by this package fall into three groups:
//   - ErrAborted: the transfer ended early and the peer has already been
//     told; the session continues
//   - ErrConnection: the message channel failed; the session must close
//   - anything else: a local failure (blob store, temp file) that the
//     peer has not been told about yet
package transfer

import (
	"errors"
	"fmt"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// DefaultFileBufferSize is the largest chunk sent during a download.
const DefaultFileBufferSize = 1 << 20

// Upload and download acknowledgement texts.
const (
	MsgAuthorized        = "Authorized to upload data"
	MsgOK                = "OK"
	MsgTooMuchData       = "Exception during upload. You sent too much data"
	MsgUnexpectedMessage = "Unexpected message during upload"
	MsgInvalidSize       = "Invalid file size"
)

// Conn is the message channel a transfer runs over.
type Conn interface {
	Receive() (message.Message, error)
	Send(m message.Message) error
}

var (
	// ErrAborted indicates the transfer ended early. The peer has already
	// received whatever response was due.
	ErrAborted = errors.New("transfer aborted")

	// ErrConnection indicates the underlying message channel failed.
	ErrConnection = errors.New("transfer connection failed")
)

// AbortError describes why a transfer was aborted.
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAborted, e.Reason)
}

func (e *AbortError) Unwrap() error { return ErrAborted }

func aborted(format string, args ...any) error {
	return &AbortError{Reason: fmt.Sprintf(format, args...)}
}

func connErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

// Result summarizes a finished transfer.
type Result struct {
	// Bytes is the number of payload bytes moved.
	Bytes int64

	// Chunks is the number of data messages exchanged.
	Chunks int

	// Stopped reports that the peer ended the transfer early with a stop
	// or a negative ack.
	Stopped bool
}
