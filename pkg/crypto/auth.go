package crypto

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// authDomain domain-separates the relation authenticator from any other
// use of Sign, so a relation signature can never be replayed as a
// signature over unrelated application data.
var authDomain = []byte("twincall-auth-v1")

// ErrAuthFormat is returned when a sign_auth output cannot be parsed.
var ErrAuthFormat = errors.New("crypto: malformed auth signature")

// SignAuth produces a domain-separated authenticator tying idA to idB
// under priv, per spec §4.3. The returned string embeds the signer's
// public key so a verifier can locate it before any database lookup via
// ExtractAuthPublicKey.
func SignAuth(priv *KeyPair, peerPublic []byte, idA, idB uuid.UUID) (string, error) {
	msg := authMessage(idA, idB)
	sig, err := priv.Sign(msg, false)
	if err != nil {
		return "", err
	}

	pub := priv.SigningPublicKey()
	out := make([]byte, 0, 2+len(pub)+len(sig))
	out = append(out, byte(priv.kind), byte(len(pub)))
	out = append(out, pub...)
	out = append(out, sig...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// VerifyAuth verifies a SignAuth output against idA/idB, checking that
// the embedded public key matches expectedPublic (the caller's lookup of
// the claimed signer).
func VerifyAuth(sig string, idA, idB uuid.UUID, expectedPublic []byte) (bool, error) {
	kind, pub, raw, err := decodeAuth(sig)
	if err != nil {
		return false, err
	}
	if !bytesEqual(pub, expectedPublic) {
		return false, nil
	}
	return Verify(kind, pub, authMessage(idA, idB), raw, false)
}

// ExtractAuthPublicKey returns the signer's public key embedded in sig,
// letting the caller look up the corresponding twincode before verifying.
func ExtractAuthPublicKey(sig string) ([]byte, error) {
	_, pub, _, err := decodeAuth(sig)
	return pub, err
}

func decodeAuth(sig string) (Kind, []byte, []byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return 0, nil, nil, ErrAuthFormat
	}
	if len(raw) < 2 {
		return 0, nil, nil, ErrAuthFormat
	}
	kind := Kind(raw[0])
	pubLen := int(raw[1])
	if len(raw) < 2+pubLen {
		return 0, nil, nil, ErrAuthFormat
	}
	pub := raw[2 : 2+pubLen]
	signature := raw[2+pubLen:]
	return kind, pub, signature, nil
}

func authMessage(idA, idB uuid.UUID) []byte {
	msg := make([]byte, 0, len(authDomain)+32)
	msg = append(msg, authDomain...)
	idABytes := idA
	idBBytes := idB
	msg = append(msg, idABytes[:]...)
	msg = append(msg, idBBytes[:]...)
	return msg
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
