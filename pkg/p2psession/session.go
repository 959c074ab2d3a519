// Package p2psession implements the SessionSM component of spec §4.8:
// the per-P2P-session state machine (initiate -> ringing -> accept ->
// update* -> terminate), expiration-deadline gating, chained
// transport-info decoding, and ping-on-silence retry. It follows a
// handshake-progression shape, each inbound step validated against
// an expected next state, generalized from a fixed three-step
// handshake to this spec's six-state, long-lived session.
package p2psession

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/keystore"
	"github.com/twinlife/twincall/pkg/sdp"
)

// Endpoint identifies the remote side of a session: the peer's
// twincode and, once known, the device that answered.
type Endpoint struct {
	Twincode uuid.UUID
	Device   uuid.UUID
}

// Session is the P2PSession of spec §3.
type Session struct {
	mu sync.Mutex

	ID             uuid.UUID
	Local          uuid.UUID
	Peer           Endpoint
	Offer          MediaOffer
	OfferToReceive MediaOffer
	MajorVersion   int
	MinorVersion   int
	Expiration     time.Time

	state   State
	keyPair keystore.SessionKeyPair

	lastActivity time.Time
}

// NewSession constructs a Session in the Initiated state.
func NewSession(id, local uuid.UUID, peer Endpoint, offer MediaOffer, expiration time.Time, kp keystore.SessionKeyPair) *Session {
	return &Session{
		ID:           id,
		Local:        local,
		Peer:         peer,
		Offer:        offer,
		Expiration:   expiration,
		state:        Initiated,
		keyPair:      kp,
		lastActivity: time.Now(),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Expired reports whether now is past the session's
// expiration_deadline.
func (s *Session) Expired(now time.Time) bool {
	return !s.Expiration.IsZero() && now.After(s.Expiration)
}

// touch records activity for ping-silence tracking.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

// Silence reports how long it has been since the last observed
// activity on this session, as of now.
func (s *Session) Silence(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

// transition moves the session from one of the allowed "from" states
// to "to", returning ErrWrongState if the current state isn't among
// them.
func (s *Session) transition(to State, from ...State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == to {
		return nil // idempotent re-delivery
	}
	for _, f := range from {
		if s.state == f {
			s.state = to
			return nil
		}
	}
	return ErrWrongState
}

// KeyPair returns the session's encrypt/decrypt facade.
func (s *Session) KeyPair() keystore.SessionKeyPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyPair
}

// Encrypt allocates a nonce and encrypts body through the session's
// key pair, refreshing via refresh when the leased block is
// exhausted.
func (s *Session) Encrypt(body sdp.Sdp, refresh func() (keystore.SessionKeyPair, error)) (uint64, sdp.Sdp, error) {
	kp := s.KeyPair()
	nonce := kp.AllocateNonce()
	if nonce == 0 {
		fresh, err := refresh()
		if err != nil {
			return 0, sdp.Sdp{}, err
		}
		s.mu.Lock()
		s.keyPair = fresh
		s.mu.Unlock()
		kp = fresh
		nonce = kp.AllocateNonce()
	}
	code, out := kp.Encrypt(nonce, body)
	if !code.IsSuccess() {
		return 0, sdp.Sdp{}, codeErr(code)
	}
	return nonce, *out, nil
}
