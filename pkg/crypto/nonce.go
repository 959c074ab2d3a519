package crypto

import (
	"encoding/binary"
	"errors"
)

// AEAD sizing, shared by every AeadBox regardless of how it was bound
// (symmetric secret or ECDH-derived).
const (
	// SymmetricKeySize is the AES-128 key length in bytes.
	SymmetricKeySize = 16

	// AEADNonceSize is the AES-GCM nonce length in bytes.
	AEADNonceSize = 12

	// AEADTagSize is the GCM authentication tag length in bytes.
	AEADTagSize = 16
)

var nonceKDFInfo = []byte("nonce")

// ErrInvalidKeySize is returned when a key does not match SymmetricKeySize.
var ErrInvalidKeySize = errors.New("crypto: invalid key size, must be 16 bytes")

// DeriveNonce computes the per-message AEAD nonce for nonce_seq under key,
// per spec §4.3: HKDF(key, "nonce") XOR big_endian(nonce_seq). The HKDF
// output is cached by callers (see AeadBox) since it only depends on key.
func DeriveNonce(nonceBase []byte, nonceSeq uint64) []byte {
	nonce := make([]byte, AEADNonceSize)
	copy(nonce, nonceBase)

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], nonceSeq)

	// XOR the big-endian sequence into the low 8 bytes of the nonce.
	off := AEADNonceSize - 8
	for i := 0; i < 8; i++ {
		nonce[off+i] ^= seqBytes[i]
	}
	return nonce
}

// DeriveNonceBase derives the HKDF("nonce") base material a DeriveNonce
// call XORs the sequence number into.
func DeriveNonceBase(key []byte) ([]byte, error) {
	return HKDFSHA256(key, nil, nonceKDFInfo, AEADNonceSize)
}
