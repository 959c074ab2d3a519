// Package crypto implements the CryptoPrimitives capability set of spec
// §4.3: abstract signing (Ed25519/ECDSA), key agreement (X25519/ECDSA),
// AEAD (AES-GCM, see aead.go), and a CSPRNG. One file per primitive
// (p256.go, kdf.go, nonce.go), matching this module's algorithm set.
package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// Kind selects the algorithm family backing a KeyPair, per spec §4.3/§4.4
// (KeyInfo.flags encodes the same choice for a persisted key row).
type Kind int

const (
	// KindX25519Ed25519 pairs an X25519 ECDH key with an Ed25519 signing
	// key sharing no key material — the common case for twincode keys.
	KindX25519Ed25519 Kind = iota

	// KindECDSA uses a single P-256 key pair for both ECDH and ECDSA
	// signing, the click-to-call / legacy interop case.
	KindECDSA
)

func (k Kind) String() string {
	switch k {
	case KindX25519Ed25519:
		return "x25519-ed25519"
	case KindECDSA:
		return "ecdsa"
	default:
		return "unknown"
	}
}

// Errors for KeyPair operations.
var (
	ErrUnknownKind      = errors.New("crypto: unknown key kind")
	ErrNoPrivateKey     = errors.New("crypto: key pair holds no private material")
	ErrPublicKeyMissing = errors.New("crypto: key pair holds no public material")
)

// KeyPair is an opaque handle over either key kind, public-only or with
// private material. Dispose zeroizes any private bytes it holds; callers
// that load private material for the duration of one operation should
// defer Dispose like any other scoped resource handle.
type KeyPair struct {
	kind Kind

	edPub  ed25519.PublicKey
	edPriv ed25519.PrivateKey
	xPub   []byte
	xPriv  []byte

	ecdsaPair *P256KeyPair
	ecdsaPub  []byte // used when only a public ECDSA key is known
}

// Generate creates a fresh private KeyPair of the given kind.
func Generate(kind Kind) (*KeyPair, error) {
	switch kind {
	case KindX25519Ed25519:
		edPriv, edPub, err := Ed25519GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		xPriv, xPub, err := X25519GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		return &KeyPair{kind: kind, edPub: edPub, edPriv: edPriv, xPub: xPub, xPriv: xPriv}, nil
	case KindECDSA:
		kp, err := P256GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		return &KeyPair{kind: kind, ecdsaPair: kp}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// ImportPublic builds a public-only KeyPair from previously exported
// bytes (KeyStore's persisted public half).
func ImportPublic(kind Kind, signingPublic, encryptionPublic []byte) (*KeyPair, error) {
	switch kind {
	case KindX25519Ed25519:
		if len(signingPublic) != ed25519.PublicKeySize || len(encryptionPublic) != X25519KeySize {
			return nil, ErrInvalidEd25519Key
		}
		return &KeyPair{kind: kind, edPub: ed25519.PublicKey(signingPublic), xPub: encryptionPublic}, nil
	case KindECDSA:
		if err := P256ValidatePublicKey(signingPublic); err != nil {
			return nil, err
		}
		return &KeyPair{kind: kind, ecdsaPub: signingPublic}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// ImportPrivate rebuilds a private KeyPair from persisted private bytes.
func ImportPrivate(kind Kind, signingPrivate, encryptionPrivate []byte) (*KeyPair, error) {
	switch kind {
	case KindX25519Ed25519:
		if len(signingPrivate) != ed25519.PrivateKeySize {
			return nil, ErrInvalidEd25519Key
		}
		pub, err := X25519PublicFromPrivate(encryptionPrivate)
		if err != nil {
			return nil, err
		}
		edPriv := ed25519.PrivateKey(signingPrivate)
		return &KeyPair{
			kind:   kind,
			edPriv: edPriv,
			edPub:  edPriv.Public().(ed25519.PublicKey),
			xPriv:  encryptionPrivate,
			xPub:   pub,
		}, nil
	case KindECDSA:
		kp, err := P256KeyPairFromPrivateKey(signingPrivate)
		if err != nil {
			return nil, err
		}
		return &KeyPair{kind: kind, ecdsaPair: kp}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// Kind reports the algorithm family backing kp.
func (kp *KeyPair) Kind() Kind { return kp.kind }

// SigningPublicKey returns the raw bytes used to verify this pair's
// signatures.
func (kp *KeyPair) SigningPublicKey() []byte {
	if kp.kind == KindECDSA {
		if kp.ecdsaPair != nil {
			return kp.ecdsaPair.P256PublicKey()
		}
		return kp.ecdsaPub
	}
	return kp.edPub
}

// EncryptionPublicKey returns the raw bytes used as this pair's ECDH
// public point/key.
func (kp *KeyPair) EncryptionPublicKey() []byte {
	if kp.kind == KindECDSA {
		if kp.ecdsaPair != nil {
			return kp.ecdsaPair.P256PublicKey()
		}
		return kp.ecdsaPub
	}
	return kp.xPub
}

// Sign signs message with the private signing key. When base64URL is
// true, the returned bytes are the base64url-encoded signature rather
// than the raw bytes, per spec §4.3.
func (kp *KeyPair) Sign(message []byte, base64URL bool) ([]byte, error) {
	var sig []byte
	var err error
	switch kp.kind {
	case KindX25519Ed25519:
		if kp.edPriv == nil {
			return nil, ErrNoPrivateKey
		}
		sig, err = Ed25519Sign(kp.edPriv, message)
	case KindECDSA:
		if kp.ecdsaPair == nil {
			return nil, ErrNoPrivateKey
		}
		sig, err = P256Sign(kp.ecdsaPair, message)
	default:
		return nil, ErrUnknownKind
	}
	if err != nil {
		return nil, err
	}
	if base64URL {
		return []byte(base64.RawURLEncoding.EncodeToString(sig)), nil
	}
	return sig, nil
}

// Verify checks sig against message using this pair's public signing key.
// base64URL must match the encoding used when the signature was produced.
func Verify(kind Kind, signingPublic, message, sig []byte, base64URL bool) (bool, error) {
	raw := sig
	if base64URL {
		decoded, err := base64.RawURLEncoding.DecodeString(string(sig))
		if err != nil {
			return false, err
		}
		raw = decoded
	}
	switch kind {
	case KindX25519Ed25519:
		return Ed25519Verify(ed25519.PublicKey(signingPublic), message, raw)
	case KindECDSA:
		return P256Verify(signingPublic, message, raw)
	default:
		return false, ErrUnknownKind
	}
}

// ECDH computes the shared secret between kp's private encryption key and
// peerPublic. The result must be passed through HKDF before use as a
// symmetric key (AeadBox.Bind does this).
func (kp *KeyPair) ECDH(peerPublic []byte) ([]byte, error) {
	switch kp.kind {
	case KindX25519Ed25519:
		if kp.xPriv == nil {
			return nil, ErrNoPrivateKey
		}
		return X25519SharedSecret(kp.xPriv, peerPublic)
	case KindECDSA:
		if kp.ecdsaPair == nil {
			return nil, ErrNoPrivateKey
		}
		return P256ECDH(kp.ecdsaPair, peerPublic)
	default:
		return nil, ErrUnknownKind
	}
}

// Dispose zeroizes any private material kp holds. Safe to call more than
// once or on a public-only KeyPair.
func (kp *KeyPair) Dispose() {
	zero(kp.edPriv)
	zero(kp.xPriv)
	if kp.ecdsaPair != nil {
		kp.ecdsaPair.Zeroize()
	}
	kp.edPriv = nil
	kp.xPriv = nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
