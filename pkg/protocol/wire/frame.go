package wire

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Reader reads whole frames from an underlying stream. Partial reads are
// retried until the frame is complete or the stream ends.
type Reader struct {
	r          io.Reader
	maxPayload uint32
	hdr        [HeaderSize]byte
}

// NewReader returns a Reader enforcing maxPayload (0 means the default).
func NewReader(r io.Reader, maxPayload uint32) *Reader {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayloadSize
	}
	return &Reader{r: r, maxPayload: maxPayload}
}

// ReadFrame reads one frame. It returns io.EOF when the peer closed the
// stream, whether between frames or in the middle of one.
func (r *Reader) ReadFrame() (Header, []byte, error) {
	if _, err := io.ReadFull(r.r, r.hdr[:]); err != nil {
		return Header{}, nil, closedOr(err)
	}

	h, err := DecodeHeader(r.hdr[:], r.maxPayload)
	if err != nil {
		return h, nil, err
	}

	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return h, nil, closedOr(err)
	}
	return h, payload, nil
}

func closedOr(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return err
}

// Writer writes frames with a single Write call each. It is safe for
// concurrent use.
type Writer struct {
	mu         sync.Mutex
	w          io.Writer
	maxPayload uint32
	buf        []byte
}

// NewWriter returns a Writer refusing payloads above maxPayload (0 means
// the default).
func NewWriter(w io.Writer, maxPayload uint32) *Writer {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayloadSize
	}
	return &Writer{w: w, maxPayload: maxPayload}
}

// WriteFrame writes a frame of the given kind.
func (w *Writer) WriteFrame(kind uint32, payload []byte) error {
	if uint64(len(payload)) > uint64(w.maxPayload) {
		return fmt.Errorf("%w: refusing to send %d bytes (limit %d)", ErrPayloadTooLarge, len(payload), w.maxPayload)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n := HeaderSize + len(payload)
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
	}
	buf := w.buf[:n]
	Header{Kind: kind, PayloadSize: uint32(len(payload))}.put(buf)
	copy(buf[HeaderSize:], payload)

	_, err := w.w.Write(buf)
	return err
}
