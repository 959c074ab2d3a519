// Package wire implements the length-prefixed, self-describing binary
// framing of spec §4.1: zig-zag varints, verbose/compact UUID encoding,
// strings, optionals, and attribute TLVs: a control-octet-plus-value
// shape with minimum-width integer encoding, generalized to this
// spec's simpler attribute tag set.
package wire

import (
	"encoding/binary"
	"io"
)

// putVarint32 zig-zag encodes a signed 32-bit integer as 1-5 bytes.
func putVarint32(w io.Writer, v int32) error {
	return putVarintU64(w, zigZagEncode32(v))
}

// putVarint64 zig-zag encodes a signed 64-bit integer as 1-10 bytes.
func putVarint64(w io.Writer, v int64) error {
	return putVarintU64(w, zigZagEncode64(v))
}

func putVarintU64(w io.Writer, u uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], u)
	_, err := w.Write(buf[:n])
	return err
}

// getVarint32 decodes a value written by putVarint32.
func getVarint32(r io.ByteReader) (int32, error) {
	u, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return zigZagDecode32(u), nil
}

// getVarint64 decodes a value written by putVarint64.
func getVarint64(r io.ByteReader) (int64, error) {
	u, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return zigZagDecode64(u), nil
}

func zigZagEncode32(v int32) uint64 {
	return uint64(uint32((v << 1) ^ (v >> 31)))
}

func zigZagDecode32(u uint64) int32 {
	v := uint32(u)
	return int32(v>>1) ^ -int32(v&1)
}

func zigZagEncode64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigZagDecode64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
