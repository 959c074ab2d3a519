package wire

import (
	"io"

	"github.com/google/uuid"
)

// Writer encodes schema-framed packets to an io.Writer. Compact selects
// the 16-byte raw UUID encoding; when false, UUIDs are written as two
// zig-zag varint longs (verbose variant), per spec §4.1.
type Writer struct {
	w       io.Writer
	Compact bool
}

// NewWriter creates a Writer over w using the verbose UUID encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewCompactWriter creates a Writer over w using the compact UUID
// encoding.
func NewCompactWriter(w io.Writer) *Writer {
	return &Writer{w: w, Compact: true}
}

// PutInt32 writes a zig-zag varint signed 32-bit integer.
func (wr *Writer) PutInt32(v int32) error { return putVarint32(wr.w, v) }

// PutInt64 writes a zig-zag varint signed 64-bit integer.
func (wr *Writer) PutInt64(v int64) error { return putVarint64(wr.w, v) }

// PutUUID writes id using the writer's configured variant.
func (wr *Writer) PutUUID(id uuid.UUID) error {
	if wr.Compact {
		return putUUIDCompact(wr.w, id)
	}
	return putUUIDVerbose(wr.w, id)
}

// PutBool writes a single-byte boolean.
func (wr *Writer) PutBool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := wr.w.Write([]byte{b})
	return err
}

// PutString writes s as an int length followed by its UTF-8 bytes. The
// empty string is a single zero byte.
func (wr *Writer) PutString(s string) error {
	if err := wr.PutInt32(int32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := io.WriteString(wr.w, s)
	return err
}

// PutBytes writes an int length followed by raw bytes.
func (wr *Writer) PutBytes(b []byte) error {
	if err := wr.PutInt32(int32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := wr.w.Write(b)
	return err
}

// PutOptionalUUID writes 0 for an absent value, or zig-zag 1 followed by
// id when present.
func (wr *Writer) PutOptionalUUID(id *uuid.UUID) error {
	if id == nil {
		return wr.PutInt32(0)
	}
	if err := wr.PutInt32(1); err != nil {
		return err
	}
	return wr.PutUUID(*id)
}

// PutOptionalString writes 0 for an absent value, or zig-zag 1 followed
// by the string when present.
func (wr *Writer) PutOptionalString(s *string) error {
	if s == nil {
		return wr.PutInt32(0)
	}
	if err := wr.PutInt32(1); err != nil {
		return err
	}
	return wr.PutString(*s)
}

// PutHeader writes the packet header common to every wire packet:
// schemaId + schemaVersion + requestId (spec §6).
func (wr *Writer) PutHeader(h Header) error {
	if err := wr.PutUUID(h.SchemaID); err != nil {
		return err
	}
	if err := wr.PutInt32(h.SchemaVersion); err != nil {
		return err
	}
	return wr.PutInt64(int64(h.RequestID))
}

// Header is the common prefix of every wire packet.
type Header struct {
	SchemaID      uuid.UUID
	SchemaVersion int32
	RequestID     uint64
}
