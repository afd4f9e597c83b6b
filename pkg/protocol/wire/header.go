// Package wire implements the framing layer of the store protocol.
//
// Every frame is a fixed 21-byte header followed by PayloadSize bytes of
// payload:
//
//	offset  size  field
//	0       13    magic, ASCII "CrypToolStore"
//	13      4     kind, uint32 big-endian
//	17      4     payload size, uint32 big-endian
//
// The header is decodable before any payload byte arrives, and the payload
// size is checked against a configured maximum before the payload is read.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic opens every frame.
	Magic = "CrypToolStore"

	// HeaderSize is the encoded size of a Header.
	HeaderSize = len(Magic) + 4 + 4

	// DefaultMaxPayloadSize bounds payloads when no limit is configured.
	DefaultMaxPayloadSize uint32 = 10 << 20

	// MaxPayloadLimit is the largest limit a deployment may configure.
	MaxPayloadLimit uint32 = 64 << 20
)

// ErrProtocol is the root of every framing error. A connection that
// produced one must be closed without reading further.
var ErrProtocol = errors.New("protocol error")

var (
	ErrShortHeader     = fmt.Errorf("%w: short header", ErrProtocol)
	ErrBadMagic        = fmt.Errorf("%w: bad header magic", ErrProtocol)
	ErrPayloadTooLarge = fmt.Errorf("%w: payload too large", ErrProtocol)
)

// Header is the fixed frame header.
type Header struct {
	Kind        uint32
	PayloadSize uint32
}

// Encode returns the wire form of h.
func (h Header) Encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	h.put(b[:])
	return b
}

func (h Header) put(b []byte) {
	copy(b, Magic)
	binary.BigEndian.PutUint32(b[len(Magic):], h.Kind)
	binary.BigEndian.PutUint32(b[len(Magic)+4:], h.PayloadSize)
}

// DecodeHeader parses b and validates the payload size against
// maxPayload. A zero maxPayload means DefaultMaxPayloadSize.
func DecodeHeader(b []byte, maxPayload uint32) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	if string(b[:len(Magic)]) != Magic {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Kind:        binary.BigEndian.Uint32(b[len(Magic):]),
		PayloadSize: binary.BigEndian.Uint32(b[len(Magic)+4:]),
	}
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayloadSize
	}
	if h.PayloadSize > maxPayload {
		return h, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, h.PayloadSize, maxPayload)
	}
	return h, nil
}

// IsProtocolError reports whether err is a framing or decoding error.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}
