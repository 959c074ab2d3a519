package transport

import (
	"encoding/binary"
	"errors"
	"io"
)

// LengthPrefixSize is the size of the length prefix StreamWriter/
// StreamReader put in front of every TCP-framed packet.
const LengthPrefixSize = 4

// MaxDatagramSize bounds a single UDP send/receive and, doubled, the
// length a StreamReader will accept before rejecting a frame as
// corrupt. Signaling packets (pkg/wire) are small IQs, not media, so
// this is generous headroom rather than a tuned MTU.
const MaxDatagramSize = 1280

// Stream-framing errors.
var (
	ErrInvalidLengthPrefix = errors.New("transport: invalid length prefix")
	ErrMessageTooLong      = errors.New("transport: framed message too long")
	ErrStreamReadFailed    = errors.New("transport: stream read failed")
)

// StreamWriter wraps an io.Writer to add length-prefix framing for a
// byte-oriented transport (TCP). Payloads are already complete
// pkg/wire packets, so the writer only needs to delimit them.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates a stream writer over w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write writes frame preceded by a 4-byte little-endian length prefix.
func (sw *StreamWriter) Write(frame []byte) (int, error) {
	var lenBuf [LengthPrefixSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))

	n, err := sw.w.Write(lenBuf[:])
	if err != nil {
		return n, err
	}
	m, err := sw.w.Write(frame)
	return n + m, err
}

// StreamReader wraps an io.Reader to read length-prefixed frames
// written by a StreamWriter.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader creates a stream reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Read reads one length-prefixed frame, returning its payload without
// the prefix.
func (sr *StreamReader) Read() ([]byte, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(sr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, ErrStreamReadFailed
	}

	frameLen := binary.LittleEndian.Uint32(lenBuf[:])
	if frameLen == 0 {
		return nil, ErrInvalidLengthPrefix
	}
	if frameLen > MaxDatagramSize*2 {
		return nil, ErrMessageTooLong
	}

	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(sr.r, frame); err != nil {
		return nil, ErrStreamReadFailed
	}
	return frame, nil
}

// EncodeWithLengthPrefix prepends a 4-byte little-endian length prefix
// to frame, for callers that build the wire bytes themselves.
func EncodeWithLengthPrefix(frame []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(frame))
	binary.LittleEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(frame)))
	copy(buf[LengthPrefixSize:], frame)
	return buf
}
