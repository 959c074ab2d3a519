package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// Errors for AEAD box operations.
var (
	ErrAEADBindRequired = errors.New("crypto: aead box not bound to a key")
	ErrAEADAuthFailed   = errors.New("crypto: aead authentication failed")
)

// AeadBox is an AES-GCM AEAD box keyed either directly by a symmetric
// secret, or by an ECDH shared secret run through HKDF with a caller-
// supplied salt (spec §4.3). Either binding produces the same
// encrypt/decrypt surface; the session layer decides which one to use.
type AeadBox struct {
	aead      cipher.AEAD
	nonceBase []byte
}

// NewAeadBox constructs an unbound box. Call Bind or BindRaw before use.
func NewAeadBox() *AeadBox {
	return &AeadBox{}
}

// Bind derives the AEAD key from an ECDH agreement between my private key
// and the peer's public key, then HKDF-expands it with salt, mirroring
// SessionKeyPair's ECDH-backed variant (spec §4.5).
func (b *AeadBox) Bind(myPrivate *KeyPair, peerPublic []byte, salt []byte) error {
	shared, err := myPrivate.ECDH(peerPublic)
	if err != nil {
		return err
	}
	key, err := HKDFSHA256(shared, salt, []byte("aead-key"), SymmetricKeySize)
	if err != nil {
		return err
	}
	return b.BindRaw(key)
}

// BindRaw binds the box directly to a 16-byte symmetric secret, the
// secret-backed SessionKeyPair variant's case (spec §4.5).
func (b *AeadBox) BindRaw(key []byte) error {
	if len(key) != SymmetricKeySize {
		return ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, AEADNonceSize)
	if err != nil {
		return err
	}
	nonceBase, err := DeriveNonceBase(key)
	if err != nil {
		return err
	}
	b.aead = aead
	b.nonceBase = nonceBase
	return nil
}

// Encrypt seals plaintext under the nonce derived from nonceSeq and aad,
// per the reuse-forbidden contract in spec §4.3: the caller must never
// reuse a (key, nonceSeq) pair.
func (b *AeadBox) Encrypt(nonceSeq uint64, plaintext, aad []byte) ([]byte, error) {
	if b.aead == nil {
		return nil, ErrAEADBindRequired
	}
	nonce := DeriveNonce(b.nonceBase, nonceSeq)
	return b.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Decrypt opens ciphertext sealed by Encrypt with the same nonceSeq/aad.
func (b *AeadBox) Decrypt(nonceSeq uint64, ciphertext, aad []byte) ([]byte, error) {
	if b.aead == nil {
		return nil, ErrAEADBindRequired
	}
	nonce := DeriveNonce(b.nonceBase, nonceSeq)
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAEADAuthFailed
	}
	return plaintext, nil
}

// RandomBytes fills and returns n cryptographically random bytes, the
// CSPRNG capability named in spec §4.3.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
