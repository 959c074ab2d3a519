package keystore

import (
	"github.com/google/uuid"
	"github.com/pion/transport/v3/replaydetector"

	"github.com/twinlife/twincall/pkg/crypto"
	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// ecdhKeyIndex is always embedded by an ECDH-backed exchange, to tell
// the peer "this is ECDH-wrapped, use the header-provided public key"
// rather than a secret slot (spec §4.5).
const ecdhKeyIndex = 1

// ECDHKeyPair is the ECDH-backed SessionKeyPair variant of spec §4.5,
// used for click-to-call exchanges that have no prior established
// relation: the shared secret is derived fresh from the local
// twincode's encryption private key and a peer public key observed in
// the message header.
type ECDHKeyPair struct {
	sessionID  uuid.UUID
	ourPublic  []byte
	peerPublic []byte
	salt       []byte
	box        *crypto.AeadBox
	replay     replaydetector.ReplayDetector

	leaser nonceLeaser
}

// NewECDHKeyPair binds an AEAD box to the ECDH shared secret between
// ourPrivate and peerPublic, salted with salt, and leases a nonce
// block starting at 1.
func NewECDHKeyPair(sessionID uuid.UUID, ourPrivate *crypto.KeyPair, peerPublic, salt []byte, lease uint64) (*ECDHKeyPair, error) {
	box := crypto.NewAeadBox()
	if err := box.Bind(ourPrivate, peerPublic, salt); err != nil {
		return nil, err
	}
	k := &ECDHKeyPair{
		sessionID:  sessionID,
		ourPublic:  ourPrivate.EncryptionPublicKey(),
		peerPublic: peerPublic,
		salt:       salt,
		box:        box,
		replay:     replaydetector.New(replayWindowSize, replayMaxSequence),
	}
	k.leaser.refresh(0, lease)
	return k, nil
}

func (k *ECDHKeyPair) AllocateNonce() uint64 { return k.leaser.allocate() }
func (k *ECDHKeyPair) SequenceCount() uint64 { return k.leaser.committed() }

// NeedsRenew is always false: an ECDH-backed exchange derives a fresh
// secret per session and is never rotated in place.
func (k *ECDHKeyPair) NeedsRenew() bool { return false }

// aad binds the sender's public key, so the sealing side (passing its
// own key) and the opening side (passing its peer's) build the same
// bytes.
func (k *ECDHKeyPair) aad(senderPublic []byte, nonceSeq uint64) []byte {
	buf := make([]byte, 0, len(k.salt)+len(senderPublic)+16+8)
	buf = append(buf, k.salt...)
	buf = append(buf, senderPublic...)
	buf = append(buf, aad(k.sessionID, nonceSeq)...)
	return buf
}

func (k *ECDHKeyPair) Encrypt(nonceSeq uint64, body sdp.Sdp) (twinerr.Code, *sdp.Sdp) {
	ciphertext, err := k.box.Encrypt(nonceSeq, body.Body, k.aad(k.ourPublic, nonceSeq))
	if err != nil {
		return twinerr.ENCRYPT_ERROR, nil
	}
	return twinerr.SUCCESS, &sdp.Sdp{Body: ciphertext, Compressed: body.Compressed, KeyIndex: ecdhKeyIndex}
}

func (k *ECDHKeyPair) Decrypt(nonceSeq uint64, peerSessionID uuid.UUID, body sdp.Sdp) (twinerr.Code, *sdp.Sdp) {
	if peerSessionID != k.sessionID {
		return twinerr.BAD_SIGNATURE, nil
	}
	accept, ok := k.replay.Check(nonceSeq)
	if !ok {
		return twinerr.DECRYPT_ERROR, nil
	}
	plaintext, err := k.box.Decrypt(nonceSeq, body.Body, k.aad(k.peerPublic, nonceSeq))
	if err != nil {
		return twinerr.DECRYPT_ERROR, nil
	}
	accept()
	return twinerr.SUCCESS, &sdp.Sdp{Body: plaintext, Compressed: body.Compressed}
}

func (k *ECDHKeyPair) Dispose() {
	k.box = nil
}
