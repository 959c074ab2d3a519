package wire

import (
	"bytes"
	"io"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// Reader decodes schema-framed packets from a byte slice. Compact must
// match the variant the corresponding Writer used.
type Reader struct {
	r       *bytes.Reader
	Compact bool
}

// NewReader creates a Reader over data using the verbose UUID encoding.
func NewReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data)}
}

// NewCompactReader creates a Reader over data using the compact UUID
// encoding.
func NewCompactReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data), Compact: true}
}

// Remaining reports how many bytes are left unread.
func (rd *Reader) Remaining() int { return rd.r.Len() }

// GetInt32 reads a zig-zag varint signed 32-bit integer.
func (rd *Reader) GetInt32() (int32, error) {
	v, err := getVarint32(rd.r)
	if err != nil {
		return 0, wrapBadFormat(err)
	}
	return v, nil
}

// GetInt64 reads a zig-zag varint signed 64-bit integer.
func (rd *Reader) GetInt64() (int64, error) {
	v, err := getVarint64(rd.r)
	if err != nil {
		return 0, wrapBadFormat(err)
	}
	return v, nil
}

// GetUUID reads a UUID using the reader's configured variant.
func (rd *Reader) GetUUID() (uuid.UUID, error) {
	var id uuid.UUID
	var err error
	if rd.Compact {
		id, err = getUUIDCompact(rd.r)
	} else {
		id, err = getUUIDVerbose(rd.r)
	}
	if err != nil {
		return uuid.UUID{}, wrapBadFormat(err)
	}
	return id, nil
}

// GetBool reads a single-byte boolean.
func (rd *Reader) GetBool() (bool, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return false, wrapBadFormat(err)
	}
	return b != 0, nil
}

// GetString reads a length-prefixed UTF-8 string.
func (rd *Reader) GetString() (string, error) {
	n, err := rd.GetInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", twinerr.New(twinerr.BAD_FORMAT)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return "", wrapBadFormat(err)
	}
	return string(buf), nil
}

// GetBytes reads a length-prefixed byte slice.
func (rd *Reader) GetBytes() ([]byte, error) {
	n, err := rd.GetInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, twinerr.New(twinerr.BAD_FORMAT)
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, wrapBadFormat(err)
	}
	return buf, nil
}

// GetOptionalUUID reads an optional UUID written by PutOptionalUUID.
func (rd *Reader) GetOptionalUUID() (*uuid.UUID, error) {
	present, err := rd.GetInt32()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	id, err := rd.GetUUID()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetOptionalString reads an optional string written by PutOptionalString.
func (rd *Reader) GetOptionalString() (*string, error) {
	present, err := rd.GetInt32()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	s, err := rd.GetString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetHeader reads the packet header common to every wire packet.
func (rd *Reader) GetHeader() (Header, error) {
	var h Header
	var err error
	if h.SchemaID, err = rd.GetUUID(); err != nil {
		return Header{}, err
	}
	if h.SchemaVersion, err = rd.GetInt32(); err != nil {
		return Header{}, err
	}
	reqID, err := rd.GetInt64()
	if err != nil {
		return Header{}, err
	}
	h.RequestID = uint64(reqID)
	return h, nil
}

func wrapBadFormat(err error) error {
	return twinerr.Wrap(twinerr.BAD_FORMAT, err)
}
