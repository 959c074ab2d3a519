package keystore

import (
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// BuildSessionKeyPair resolves the SessionKeyPair a new P2P session
// with peer should use, per spec §4.5: a SecretKeyPair when the
// (local, peer) relation already has an active secret, falling back
// to an ECDHKeyPair derived from the local private encryption key and
// the peer's known public key when no relation exists yet (the
// click-to-call case).
func (s *Store) BuildSessionKeyPair(sessionID, local, peer uuid.UUID, renewDelay time.Duration, lease uint64, salt []byte) (SessionKeyPair, error) {
	info, rel, err := s.LoadTwincodeKeyWithSecret(local, peer, lease, OptionNone)
	if err != nil {
		return nil, err
	}
	if _, idx := rel.Secret.activeSecret(); idx != 0 {
		return NewSecretKeyPair(sessionID, *rel, renewDelay, lease)
	}

	peerInfo, ok := s.LoadPeerEncryptionKey(peer)
	if !ok || len(peerInfo.EncryptionPublicKey) == 0 {
		return nil, twinerr.New(twinerr.NO_PUBLIC_KEY)
	}
	if info.Private == nil {
		return nil, twinerr.New(twinerr.NO_PRIVATE_KEY)
	}
	return NewECDHKeyPair(sessionID, info.Private, peerInfo.EncryptionPublicKey, salt, lease)
}

// RefreshSessionKeyPair re-leases a nonce block for an already
// established SessionKeyPair, used when AllocateNonce returns 0
// (spec §4.5).
func (s *Store) RefreshSessionKeyPair(sessionID, local, peer uuid.UUID, renewDelay time.Duration, lease uint64, salt []byte) (SessionKeyPair, error) {
	return s.BuildSessionKeyPair(sessionID, local, peer, renewDelay, lease, salt)
}
