package keystore

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
)

// SessionKeyPair is the common contract of spec §4.5's two variants:
// secret-backed (SecretKeyPair) and ECDH-backed (ECDHKeyPair).
type SessionKeyPair interface {
	// AllocateNonce returns the next nonce sequence value from the
	// leased block, or 0 if the block is exhausted — the caller must
	// obtain a freshly leased pair via Store.RefreshSessionKeyPair
	// before allocating again.
	AllocateNonce() uint64

	// SequenceCount reports the value just below the next one
	// AllocateNonce would return: the last value handed out once
	// allocation has begun.
	SequenceCount() uint64

	// NeedsRenew reports whether the active secret should be rotated.
	NeedsRenew() bool

	// Encrypt authenticates and encrypts body under nonceSeq (obtained
	// from AllocateNonce), returning the key index the peer should use
	// to decrypt.
	Encrypt(nonceSeq uint64, body sdp.Sdp) (twinerr.Code, *sdp.Sdp)

	// Decrypt authenticates and decrypts body, which was encrypted by
	// the peer under nonceSeq. peerSessionID must equal the local
	// session id embedded by the sender, or BAD_SIGNATURE is returned.
	Decrypt(nonceSeq uint64, peerSessionID uuid.UUID, body sdp.Sdp) (twinerr.Code, *sdp.Sdp)

	// Dispose wipes all private material.
	Dispose()
}

// nonceLeaser hands out sequential nonce values from a block leased
// from the store, returning 0 once the block is spent. 0 is never a
// valid allocated value: the block always starts at 1 or above.
type nonceLeaser struct {
	mu    sync.Mutex
	next  uint64
	limit uint64
}

func (n *nonceLeaser) refresh(committed, lease uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if committed == 0 {
		committed = 1
	}
	n.next = committed
	n.limit = committed + lease
}

func (n *nonceLeaser) allocate() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.next >= n.limit {
		return 0
	}
	v := n.next
	n.next++
	return v
}

func (n *nonceLeaser) committed() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.next == 0 {
		return 0
	}
	return n.next - 1
}

// aad builds the Additional Authenticated Data for a secret-backed
// exchange: sessionId || nonce_seq (spec §4.5).
func aad(sessionID uuid.UUID, nonceSeq uint64) []byte {
	buf := make([]byte, 16+8)
	copy(buf, sessionID[:])
	binary.BigEndian.PutUint64(buf[16:], nonceSeq)
	return buf
}
