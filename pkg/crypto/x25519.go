package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"
)

// X25519KeySize is the scalar/point size for Curve25519, in bytes.
const X25519KeySize = 32

// ErrInvalidX25519Key is returned for malformed X25519 key material.
var ErrInvalidX25519Key = errors.New("crypto: invalid x25519 key")

// X25519GenerateKeyPair generates a fresh Curve25519 scalar and its
// corresponding public point.
func X25519GenerateKeyPair() (priv, pub []byte, err error) {
	priv = make([]byte, X25519KeySize)
	if _, err = rand.Read(priv); err != nil {
		return nil, nil, err
	}
	// Clamp per RFC 7748 so the scalar is a valid Curve25519 private key.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err = X25519PublicFromPrivate(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// X25519PublicFromPrivate derives the public point for an existing scalar.
func X25519PublicFromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != X25519KeySize {
		return nil, ErrInvalidX25519Key
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// X25519SharedSecret computes the Diffie-Hellman shared point between our
// scalar and the peer's public point. The raw output must always be run
// through HKDF before use as a key (see AeadBox.Bind) — it is not itself
// uniformly random.
func X25519SharedSecret(priv, peerPub []byte) ([]byte, error) {
	if len(priv) != X25519KeySize || len(peerPub) != X25519KeySize {
		return nil, ErrInvalidX25519Key
	}
	return curve25519.X25519(priv, peerPub)
}
