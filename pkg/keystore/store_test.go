package keystore

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/crypto"
)

func TestInsertKeyIsIdempotent(t *testing.T) {
	s := NewStore(nil)
	twincode := uuid.New()

	first, err := s.InsertKey(twincode, crypto.KindX25519Ed25519)
	if err != nil {
		t.Fatalf("InsertKey: %v", err)
	}
	second, err := s.InsertKey(twincode, crypto.KindX25519Ed25519)
	if err != nil {
		t.Fatalf("InsertKey (second): %v", err)
	}
	if first != second {
		t.Fatal("expected InsertKey to return the same row on repeat calls")
	}
}

func TestLoadPeerEncryptionKeyResolvesImportedKey(t *testing.T) {
	s := NewStore(nil)
	peer := uuid.New()
	s.ImportPeerKey(peer, crypto.KindX25519Ed25519, []byte("sign"), []byte("enc"))

	info, ok := s.LoadPeerEncryptionKey(peer)
	if !ok {
		t.Fatal("expected peer key to be found")
	}
	if info.Private != nil {
		t.Fatal("expected peer-only row to have no private key")
	}
}

func TestSecretRotationStateMachine(t *testing.T) {
	s := NewStore(nil)
	local, peer := uuid.New(), uuid.New()
	if _, err := s.InsertKey(local, crypto.KindX25519Ed25519); err != nil {
		t.Fatalf("InsertKey: %v", err)
	}

	if _, _, err := s.LoadTwincodeKeyWithSecret(local, peer, 32, CreateFirstSecret); err != nil {
		t.Fatalf("CreateFirstSecret: %v", err)
	}
	rel, _ := s.RelationSnapshot(local, peer)
	if !rel.Secret.Flags.Has(FlagNewSecret1) {
		t.Fatalf("expected NEW_SECRET1 set, got flags %b", rel.Secret.Flags)
	}

	if err := s.ValidateSecrets(local, peer); err != nil {
		t.Fatalf("ValidateSecrets: %v", err)
	}
	rel, _ = s.RelationSnapshot(local, peer)
	if !rel.Secret.Flags.Has(FlagUseSecret1) || rel.Secret.Flags.Has(FlagNewSecret1) {
		t.Fatalf("expected USE_SECRET1 only after validate, got flags %b", rel.Secret.Flags)
	}

	if _, _, err := s.LoadTwincodeKeyWithSecret(local, peer, 32, CreateNextSecret); err != nil {
		t.Fatalf("CreateNextSecret: %v", err)
	}
	rel, _ = s.RelationSnapshot(local, peer)
	if !rel.Secret.Flags.Has(FlagUseSecret1) || !rel.Secret.Flags.Has(FlagNewSecret2) {
		t.Fatalf("expected USE_SECRET1 | NEW_SECRET2, got flags %b", rel.Secret.Flags)
	}

	if err := s.ValidateSecrets(local, peer); err != nil {
		t.Fatalf("ValidateSecrets: %v", err)
	}
	rel, _ = s.RelationSnapshot(local, peer)
	if rel.Secret.Flags != FlagUseSecret2 {
		t.Fatalf("expected USE_SECRET2 only, got flags %b", rel.Secret.Flags)
	}
}

func TestLoadTwincodeKeyWithSecretLeasesNonceSequence(t *testing.T) {
	s := NewStore(nil)
	local, peer := uuid.New(), uuid.New()
	if _, err := s.InsertKey(local, crypto.KindX25519Ed25519); err != nil {
		t.Fatalf("InsertKey: %v", err)
	}

	_, rel, err := s.LoadTwincodeKeyWithSecret(local, peer, 32, CreateSecret)
	if err != nil {
		t.Fatalf("LoadTwincodeKeyWithSecret: %v", err)
	}
	if rel.NonceSequence != 32 {
		t.Fatalf("got nonce sequence %d, want 32", rel.NonceSequence)
	}

	_, rel, err = s.LoadTwincodeKeyWithSecret(local, peer, 32, OptionNone)
	if err != nil {
		t.Fatalf("LoadTwincodeKeyWithSecret (second lease): %v", err)
	}
	if rel.NonceSequence != 64 {
		t.Fatalf("got nonce sequence %d, want 64", rel.NonceSequence)
	}
}

func TestCreateNextSecretRequiresActiveSecret(t *testing.T) {
	s := NewStore(nil)
	local, peer := uuid.New(), uuid.New()
	if _, err := s.InsertKey(local, crypto.KindX25519Ed25519); err != nil {
		t.Fatalf("InsertKey: %v", err)
	}

	if _, _, err := s.LoadTwincodeKeyWithSecret(local, peer, 1, CreateNextSecret); err != ErrInvalidOption {
		t.Fatalf("got err %v, want ErrInvalidOption", err)
	}
}

func TestNeedsRenewAfterDelay(t *testing.T) {
	s := NewStore(nil)
	local, peer := uuid.New(), uuid.New()
	if _, err := s.InsertKey(local, crypto.KindX25519Ed25519); err != nil {
		t.Fatalf("InsertKey: %v", err)
	}
	if _, _, err := s.LoadTwincodeKeyWithSecret(local, peer, 1, CreateSecret); err != nil {
		t.Fatalf("CreateSecret: %v", err)
	}

	if s.NeedsRenew(local, peer, time.Hour) {
		t.Fatal("should not need renew immediately after creation")
	}
	if !s.NeedsRenew(local, peer, -time.Second) {
		t.Fatal("expected needs-renew with a negative delay")
	}
}
