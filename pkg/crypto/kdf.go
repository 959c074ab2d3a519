package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDFSHA256 derives length bytes of key material using HKDF-SHA256 (RFC 5869).
//
// Parameters:
//   - inputKey: input keying material (IKM), e.g. an ECDH shared secret.
//   - salt: optional salt value (nil is the zero-filled default).
//   - info: optional context/application-specific info.
func HKDFSHA256(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// HKDFExtractSHA256 performs only the HKDF-Extract step, returning a
// 32-byte pseudorandom key from the input keying material.
func HKDFExtractSHA256(inputKey, salt []byte) []byte {
	return hkdf.Extract(sha256.New, inputKey, salt)
}

// HKDFExpandSHA256 performs only the HKDF-Expand step.
func HKDFExpandSHA256(prk, info []byte, length int) ([]byte, error) {
	reader := hkdf.Expand(sha256.New, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}
