package wire

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

// putUUIDCompact writes id as 16 raw little-endian bytes: the high
// 8 bytes then the low 8 bytes, each byte-swapped to little-endian.
func putUUIDCompact(w io.Writer, id uuid.UUID) error {
	var buf [16]byte
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	binary.LittleEndian.PutUint64(buf[0:8], hi)
	binary.LittleEndian.PutUint64(buf[8:16], lo)
	_, err := w.Write(buf[:])
	return err
}

func getUUIDCompact(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], binary.LittleEndian.Uint64(buf[0:8]))
	binary.BigEndian.PutUint64(id[8:16], binary.LittleEndian.Uint64(buf[8:16]))
	return id, nil
}

// putUUIDVerbose writes id as two zig-zag varint 64-bit longs (high half,
// low half), up to 20 bytes total.
func putUUIDVerbose(w io.Writer, id uuid.UUID) error {
	hi := int64(binary.BigEndian.Uint64(id[0:8]))
	lo := int64(binary.BigEndian.Uint64(id[8:16]))
	if err := putVarint64(w, hi); err != nil {
		return err
	}
	return putVarint64(w, lo)
}

func getUUIDVerbose(r io.ByteReader) (uuid.UUID, error) {
	hi, err := getVarint64(r)
	if err != nil {
		return uuid.UUID{}, err
	}
	lo, err := getVarint64(r)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], uint64(hi))
	binary.BigEndian.PutUint64(id[8:16], uint64(lo))
	return id, nil
}
