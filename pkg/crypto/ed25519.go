package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
)

// ErrInvalidEd25519Key is returned for malformed Ed25519 key material.
var ErrInvalidEd25519Key = errors.New("crypto: invalid ed25519 key")

// Ed25519GenerateKeyPair generates a fresh Ed25519 signing key pair.
func Ed25519GenerateKeyPair() (priv ed25519.PrivateKey, pub ed25519.PublicKey, err error) {
	pub, priv, err = ed25519.GenerateKey(rand.Reader)
	return priv, pub, err
}

// Ed25519Sign signs message with priv, producing a detached signature.
func Ed25519Sign(priv ed25519.PrivateKey, message []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidEd25519Key
	}
	return ed25519.Sign(priv, message), nil
}

// Ed25519Verify verifies a detached signature against message and pub.
func Ed25519Verify(pub ed25519.PublicKey, message, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, ErrInvalidEd25519Key
	}
	return ed25519.Verify(pub, message, sig), nil
}
