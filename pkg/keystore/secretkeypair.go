package keystore

import (
	"time"

	"github.com/google/uuid"
	"github.com/pion/transport/v3/replaydetector"

	"github.com/twinlife/twincall/pkg/crypto"
	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// replayWindowSize and replayMaxSequence size the sliding-window replay
// guard on inbound nonce sequences, the same replaydetector shape
// pion/dtls uses to reject reused record sequence numbers.
const (
	replayWindowSize  = 128
	replayMaxSequence = 1<<48 - 1
)

// SecretKeyPair is the secret-backed SessionKeyPair variant of spec
// §4.5, used once a peer relation's secret rotation has completed at
// least one handshake.
type SecretKeyPair struct {
	sessionID uuid.UUID

	ourBox      *crypto.AeadBox
	ourKeyIndex int

	peerBoxes  [3]*crypto.AeadBox               // index 1 and 2 used; 0 unused
	peerReplay [3]replaydetector.ReplayDetector // guards against nonce_seq reuse per slot

	renewDelay time.Duration
	updateDate time.Time

	leaser nonceLeaser
}

// NewSecretKeyPair builds a SecretKeyPair from a relation's current
// secret state and a freshly leased nonce block.
func NewSecretKeyPair(sessionID uuid.UUID, rel Relation, renewDelay time.Duration, lease uint64) (*SecretKeyPair, error) {
	ourSecret, ourIndex := rel.Secret.activeSecret()
	if ourSecret == nil {
		return nil, twinerr.New(twinerr.NO_SECRET_KEY)
	}

	ourBox := crypto.NewAeadBox()
	if err := ourBox.BindRaw(ourSecret); err != nil {
		return nil, err
	}

	k := &SecretKeyPair{
		sessionID:   sessionID,
		ourBox:      ourBox,
		ourKeyIndex: ourIndex,
		renewDelay:  renewDelay,
		updateDate:  rel.Secret.UpdateDate,
	}
	for _, idx := range [2]int{1, 2} {
		if peerSecret := rel.Secret.peerSecret(idx); peerSecret != nil {
			box := crypto.NewAeadBox()
			if err := box.BindRaw(peerSecret); err != nil {
				return nil, err
			}
			k.peerBoxes[idx] = box
			k.peerReplay[idx] = replaydetector.New(replayWindowSize, replayMaxSequence)
		}
	}
	k.leaser.refresh(rel.NonceSequence, lease)
	return k, nil
}

func (k *SecretKeyPair) AllocateNonce() uint64 { return k.leaser.allocate() }
func (k *SecretKeyPair) SequenceCount() uint64 { return k.leaser.committed() }

func (k *SecretKeyPair) NeedsRenew() bool {
	if k.updateDate.IsZero() {
		return false
	}
	return time.Since(k.updateDate) > k.renewDelay
}

func (k *SecretKeyPair) Encrypt(nonceSeq uint64, body sdp.Sdp) (twinerr.Code, *sdp.Sdp) {
	ciphertext, err := k.ourBox.Encrypt(nonceSeq, body.Body, aad(k.sessionID, nonceSeq))
	if err != nil {
		return twinerr.ENCRYPT_ERROR, nil
	}
	return twinerr.SUCCESS, &sdp.Sdp{Body: ciphertext, Compressed: body.Compressed, KeyIndex: k.ourKeyIndex}
}

func (k *SecretKeyPair) Decrypt(nonceSeq uint64, peerSessionID uuid.UUID, body sdp.Sdp) (twinerr.Code, *sdp.Sdp) {
	if peerSessionID != k.sessionID {
		return twinerr.BAD_SIGNATURE, nil
	}
	if body.KeyIndex < 0 || body.KeyIndex >= len(k.peerBoxes) {
		return twinerr.NO_SECRET_KEY, nil
	}
	box := k.peerBoxes[body.KeyIndex]
	if box == nil {
		return twinerr.NO_SECRET_KEY, nil
	}
	accept, ok := k.peerReplay[body.KeyIndex].Check(nonceSeq)
	if !ok {
		return twinerr.DECRYPT_ERROR, nil
	}
	plaintext, err := box.Decrypt(nonceSeq, body.Body, aad(k.sessionID, nonceSeq))
	if err != nil {
		return twinerr.DECRYPT_ERROR, nil
	}
	accept()
	return twinerr.SUCCESS, &sdp.Sdp{Body: plaintext, Compressed: body.Compressed}
}

func (k *SecretKeyPair) Dispose() {
	k.ourBox = nil
	for i := range k.peerBoxes {
		k.peerBoxes[i] = nil
	}
}
