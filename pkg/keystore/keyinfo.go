package keystore

import (
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/crypto"
)

// SecretFlag tracks which of a relation's two secret slots is active
// or pending, per spec §4.4's rotation state machine.
type SecretFlag uint8

const (
	FlagUseSecret1 SecretFlag = 1 << iota
	FlagUseSecret2
	FlagNewSecret1
	FlagNewSecret2
)

// Has reports whether f has every bit in mask set.
func (f SecretFlag) Has(mask SecretFlag) bool { return f&mask == mask }

// SecretOption selects a secret-rotation transition for
// Store.LoadTwincodeKeyWithSecret.
type SecretOption int

const (
	// OptionNone performs the nonce lease without mutating secrets.
	OptionNone SecretOption = iota
	// CreateSecret sets USE_SECRET1 unconditionally and generates
	// secret1; used when there is no prior relation at all.
	CreateSecret
	// CreateFirstSecret requires no USE_x flag set; sets NEW_SECRET1.
	// Idempotent if NEW_SECRET1 or USE_SECRET1 is already set.
	CreateFirstSecret
	// CreateNextSecret requires a USE_x flag set; sets NEW_SECRETy for
	// the slot not currently in use. Idempotent.
	CreateNextSecret
)

// SecretPair holds the rotation state for one (local, peer) twincode
// relation: our two secret slots (only one USE_* at a time) and both
// of the peer's known secrets, used to decrypt whichever slot the
// peer chooses to encrypt with.
type SecretPair struct {
	Flags SecretFlag

	Secret1 []byte
	Secret2 []byte

	PeerSecret1 []byte
	PeerSecret2 []byte

	UpdateDate time.Time
}

// activeSecret returns the bytes and 1-based key index of the
// currently active USE_* slot, or (nil, 0) if none is set.
func (sp *SecretPair) activeSecret() ([]byte, int) {
	switch {
	case sp.Flags.Has(FlagUseSecret1):
		return sp.Secret1, 1
	case sp.Flags.Has(FlagUseSecret2):
		return sp.Secret2, 2
	default:
		return nil, 0
	}
}

// peerSecret returns the peer secret bytes for key index 1 or 2, or
// nil if unknown.
func (sp *SecretPair) peerSecret(keyIndex int) []byte {
	switch keyIndex {
	case 1:
		return sp.PeerSecret1
	case 2:
		return sp.PeerSecret2
	default:
		return nil
	}
}

// Relation is the per-(local, peer) twincode row carrying the secret
// rotation state and the nonce sequence counter leased by
// Store.LoadTwincodeKeyWithSecret.
type Relation struct {
	Local uuid.UUID
	Peer  uuid.UUID

	Secret SecretPair

	// NonceSequence is the highest nonce value committed so far;
	// SessionKeyPair instances consume values from a leased block
	// above it without touching the store until the block is spent.
	NonceSequence uint64
}

// KeyInfo is a twincode's key material row. Local twincodes carry a
// full KeyPair; rows representing a peer's twincode (populated via
// ImportPeerKey, read back via LoadPeerEncryptionKey) carry only the
// public halves.
type KeyInfo struct {
	Twincode uuid.UUID
	Kind     crypto.Kind

	Private *crypto.KeyPair // nil for peer-only rows

	SigningPublicKey    []byte
	EncryptionPublicKey []byte

	// FlagEncrypt mirrors the twincode's FLAG_ENCRYPT bit: set once a
	// usable secret exists for at least one peer relation.
	FlagEncrypt bool
}

func keyInfoFromPair(twincode uuid.UUID, kind crypto.Kind, kp *crypto.KeyPair) *KeyInfo {
	return &KeyInfo{
		Twincode:            twincode,
		Kind:                kind,
		Private:             kp,
		SigningPublicKey:    kp.SigningPublicKey(),
		EncryptionPublicKey: kp.EncryptionPublicKey(),
	}
}
