// Package keystore implements the durable repository of per-twincode
// key material and per-relation secret rotation state (spec §4.4),
// plus the SessionKeyPair encrypt/decrypt facade built on top of it
// (spec §4.5). An RWMutex-guarded map with Add/Remove/FindByX lookups,
// keyed by twincode instead of session id, holding KeyInfo/Relation
// rows; persistence is in-memory here, but the interface is shaped so
// a caller can back it with real storage without changing
// SessionKeyPair.
package keystore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/crypto"
	"github.com/twinlife/twincall/pkg/twinlog"
)

type relationKey struct {
	Local uuid.UUID
	Peer  uuid.UUID
}

// Store is the KeyStore of spec §4.4.
type Store struct {
	mu        sync.RWMutex
	keys      map[uuid.UUID]*KeyInfo
	relations map[relationKey]*Relation

	log twinlog.Logger
}

// NewStore creates an empty key store. factory may be nil to disable
// logging.
func NewStore(factory twinlog.Factory) *Store {
	return &Store{
		keys:      make(map[uuid.UUID]*KeyInfo),
		relations: make(map[relationKey]*Relation),
		log:       twinlog.Scoped(factory, "keystore"),
	}
}

// InsertKey is idempotent: if a row already exists for twincode it is
// kept unchanged (regardless of kind); otherwise a fresh keypair of
// kind is generated and stored.
func (s *Store) InsertKey(twincode uuid.UUID, kind crypto.Kind) (*KeyInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.keys[twincode]; ok {
		return existing, nil
	}

	kp, err := crypto.Generate(kind)
	if err != nil {
		return nil, err
	}
	info := keyInfoFromPair(twincode, kind, kp)
	s.keys[twincode] = info
	if s.log != nil {
		s.log.Infof("inserted key for twincode %s", twincode)
	}
	return info, nil
}

// ImportPeerKey registers a peer's public key material under its
// twincode, with no private key attached. Subsequent
// LoadPeerEncryptionKey calls resolve against this row.
func (s *Store) ImportPeerKey(twincode uuid.UUID, kind crypto.Kind, signingPublic, encryptionPublic []byte) *KeyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := &KeyInfo{
		Twincode:            twincode,
		Kind:                kind,
		SigningPublicKey:    signingPublic,
		EncryptionPublicKey: encryptionPublic,
	}
	s.keys[twincode] = info
	return info
}

// LoadTwincodeKey is a read-only lookup by twincode UUID.
func (s *Store) LoadTwincodeKey(twincode uuid.UUID) (*KeyInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.keys[twincode]
	return info, ok
}

// LoadPeerEncryptionKey locates a peer's public key by twincode UUID.
// In this in-memory repository peer and local rows share the same
// table; the distinction is whether KeyInfo.Private is set.
func (s *Store) LoadPeerEncryptionKey(peerTwincode uuid.UUID) (*KeyInfo, bool) {
	return s.LoadTwincodeKey(peerTwincode)
}

// relationLocked returns the (local, peer) relation, creating it if
// absent. Caller must hold s.mu for writing.
func (s *Store) relationLocked(local, peer uuid.UUID) *Relation {
	key := relationKey{Local: local, Peer: peer}
	rel, ok := s.relations[key]
	if !ok {
		rel = &Relation{Local: local, Peer: peer}
		s.relations[key] = rel
	}
	return rel
}

// LoadTwincodeKeyWithSecret atomically reads the local twincode's key
// row, advances the relation's nonce_sequence by lease, applies
// option to the relation's SecretPair, and returns the committed
// state. The mutex makes this a single-writer critical section, which
// is how this in-memory store implements the spec's CAS-with-retry
// semantics: there is never a conflicting writer to retry against.
func (s *Store) LoadTwincodeKeyWithSecret(local, peer uuid.UUID, lease uint64, option SecretOption) (*KeyInfo, *Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.keys[local]
	if !ok {
		return nil, nil, ErrKeyNotFound
	}
	if info.Private == nil {
		return nil, nil, ErrNoPrivateKey
	}

	rel := s.relationLocked(local, peer)
	if err := applyOption(&rel.Secret, option); err != nil {
		return nil, nil, err
	}
	rel.NonceSequence += lease

	return info, rel, nil
}

// ValidateSecrets promotes any pending NEW_SECRETx flag on the
// (local, peer) relation to USE_SECRETx and sets the local
// twincode's FlagEncrypt.
func (s *Store) ValidateSecrets(local, peer uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.keys[local]
	if !ok {
		return ErrKeyNotFound
	}
	rel, ok := s.relations[relationKey{Local: local, Peer: peer}]
	if !ok {
		return ErrRelationNotFound
	}

	rel.Secret.validate()
	info.FlagEncrypt = true
	return nil
}

// SaveSecretKey stores the peer's secret (as observed from a received
// secret-rotation message) into the (local, peer) relation at
// keyIndex (1 or 2), and sets the local twincode's FlagEncrypt once
// both sides of the association exist: our active secret and the
// peer's secret at the index we would use to decrypt it.
func (s *Store) SaveSecretKey(local, peer uuid.UUID, secret []byte, keyIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.keys[local]
	if !ok {
		return ErrKeyNotFound
	}

	rel := s.relationLocked(local, peer)
	switch keyIndex {
	case 1:
		rel.Secret.PeerSecret1 = secret
	case 2:
		rel.Secret.PeerSecret2 = secret
	default:
		return ErrInvalidOption
	}

	if ourSecret, _ := rel.Secret.activeSecret(); ourSecret != nil {
		info.FlagEncrypt = true
	}
	return nil
}

// RelationSnapshot returns a copy of the (local, peer) relation's
// current state, for diagnostics and tests.
func (s *Store) RelationSnapshot(local, peer uuid.UUID) (Relation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.relations[relationKey{Local: local, Peer: peer}]
	if !ok {
		return Relation{}, false
	}
	return *rel, true
}

// NeedsRenew reports whether the (local, peer) relation's active
// secret is older than renewDelay.
func (s *Store) NeedsRenew(local, peer uuid.UUID, renewDelay time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.relations[relationKey{Local: local, Peer: peer}]
	if !ok {
		return false
	}
	return rel.Secret.needsRenew(renewDelay)
}
