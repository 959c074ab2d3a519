package p2psession

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/keystore"
	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/twinlog"
	"github.com/twinlife/twincall/pkg/wire"
)

// Manager is the SessionSM component of spec §4.8: it owns every
// tracked P2PSession, emits the P2P IQ catalogue through a
// signaling.Signaling, and drives each Session's state machine from
// inbound packets and from the application's own calls.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	sig    *signaling.Signaling
	store  *keystore.Store
	params config.SessionParams
	secret config.SecretParams
	sdp    config.SdpParams

	observer Observer
	log      twinlog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Manager and registers its inbound handlers on sig.
// factory may be nil to disable logging.
func New(sig *signaling.Signaling, store *keystore.Store, params config.SessionParams, secret config.SecretParams, sdpParams config.SdpParams, observer Observer, factory twinlog.Factory) *Manager {
	if observer == nil {
		observer = NoopObserver{}
	}
	m := &Manager{
		sessions: make(map[uuid.UUID]*Session),
		sig:      sig,
		store:    store,
		params:   params.WithDefaults(),
		secret:   secret.WithDefaults(),
		sdp:      sdpParams.WithDefaults(),
		observer: observer,
		log:      twinlog.Scoped(factory, "p2psession"),
		stop:     make(chan struct{}),
	}
	m.registerHandlers()
	go m.watchdog()
	return m
}

func (m *Manager) registerHandlers() {
	m.sig.RegisterHandler(signaling.SessionInitiate, m.handleInboundInitiate)
	m.sig.RegisterHandler(signaling.SessionAccept, m.handleInboundAccept)
	m.sig.RegisterHandler(signaling.SessionUpdate, m.handleInboundUpdate)
	m.sig.RegisterHandler(signaling.TransportInfo, m.handleInboundTransportInfo)
	m.sig.RegisterHandler(signaling.SessionTerminate, m.handleInboundTerminate)
	m.sig.RegisterHandler(signaling.SessionPing, m.handleInboundPing)
	m.sig.Observe(m.onPush)
}

func (m *Manager) onPush(ev signaling.Event) {
	if ev.Method != signaling.DeviceRinging {
		return
	}
	sidAttr, ok := wire.Find(ev.Attributes, attrSessionID)
	devAttr, ok2 := wire.Find(ev.Attributes, attrDevice)
	if !ok || !ok2 {
		return
	}
	s := m.get(sidAttr.UUID)
	if s == nil {
		return
	}
	if err := s.transition(Ringing, Initiated); err != nil {
		return
	}
	m.observer.OnDeviceRinging(sidAttr.UUID, devAttr.UUID)
}

func (m *Manager) get(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *Manager) put(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

func (m *Manager) remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Close stops the ping/expiration watchdog. Sessions already tracked
// are left untouched; callers terminate them explicitly.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Initiate starts a new P2P session toward peer, sending a
// SessionInitiate IQ and blocking for its ack (spec scenario S3).
func (m *Manager) Initiate(ctx context.Context, local uuid.UUID, peer Endpoint, offer MediaOffer, sdpText string, expiration time.Time, major, minor int) (*Session, twinerr.Code, error) {
	sessionID := uuid.New()

	kp, err := m.store.BuildSessionKeyPair(sessionID, local, peer.Twincode, m.secret.SecretRenewDelay, m.secret.NonceLeaseSize, sessionID[:])
	if err != nil {
		return nil, twinerr.CodeOf(err), err
	}

	s := NewSession(sessionID, local, peer, offer, expiration, kp)
	nonce := kp.AllocateNonce()

	plain, err := sdp.Compress(sdpText, m.sdp.CompressionThreshold)
	if err != nil {
		return nil, twinerr.CodeOf(err), err
	}
	code, cipher := kp.Encrypt(nonce, plain)
	if !code.IsSuccess() {
		return nil, code, twinerr.New(code)
	}

	wireOffer := offer.Encode().WithKeyIndex(cipher.KeyIndex)
	if cipher.Compressed {
		wireOffer |= OfferCompressed
	}

	m.put(s)
	attrs := buildSessionInitiateAttrs(sessionID, local, peer.Twincode, wireOffer, nonce, *cipher, expiration, major, minor)
	ackCode, _, err := m.sig.SendIQ(ctx, signaling.SessionInitiate, attrs)
	if err != nil || !ackCode.IsSuccess() {
		m.remove(sessionID)
		return nil, ackCode, err
	}
	return s, twinerr.SUCCESS, nil
}

// Accept answers an inbound session with sdpText, transitioning it to
// Accepted.
func (m *Manager) Accept(ctx context.Context, sessionID uuid.UUID, sdpText string, expiration time.Time) (twinerr.Code, error) {
	s := m.get(sessionID)
	if s == nil {
		return twinerr.ITEM_NOT_FOUND, ErrSessionNotFound
	}
	if err := s.transition(Accepted, Initiated, Ringing); err != nil {
		return twinerr.ITEM_NOT_FOUND, err
	}

	plain, err := sdp.Compress(sdpText, m.sdp.CompressionThreshold)
	if err != nil {
		return twinerr.CodeOf(err), err
	}
	nonce, cipher, err := s.Encrypt(plain, func() (keystore.SessionKeyPair, error) {
		return m.store.RefreshSessionKeyPair(sessionID, s.Local, s.Peer.Twincode, m.secret.SecretRenewDelay, m.secret.NonceLeaseSize, sessionID[:])
	})
	if err != nil {
		return twinerr.CodeOf(err), err
	}

	wireOffer := s.Offer.Encode().WithKeyIndex(cipher.KeyIndex)
	if cipher.Compressed {
		wireOffer |= OfferCompressed
	}
	attrs := buildSessionAcceptAttrs(sessionID, wireOffer, nonce, cipher, expiration)
	code, _, err := m.sig.SendIQ(ctx, signaling.SessionAccept, attrs)
	return code, err
}

// Update renegotiates an already-accepted session.
func (m *Manager) Update(ctx context.Context, sessionID uuid.UUID, offer MediaOffer, sdpText string, expiration time.Time) (twinerr.Code, error) {
	s := m.get(sessionID)
	if s == nil {
		return twinerr.ITEM_NOT_FOUND, ErrSessionNotFound
	}
	if err := s.transition(Updating, Accepted); err != nil {
		return twinerr.ITEM_NOT_FOUND, err
	}

	plain, err := sdp.Compress(sdpText, m.sdp.CompressionThreshold)
	if err != nil {
		s.transition(Accepted, Updating)
		return twinerr.CodeOf(err), err
	}
	nonce, cipher, err := s.Encrypt(plain, func() (keystore.SessionKeyPair, error) {
		return m.store.RefreshSessionKeyPair(sessionID, s.Local, s.Peer.Twincode, m.secret.SecretRenewDelay, m.secret.NonceLeaseSize, sessionID[:])
	})
	if err != nil {
		s.transition(Accepted, Updating)
		return twinerr.CodeOf(err), err
	}
	wireOffer := offer.Encode().WithKeyIndex(cipher.KeyIndex)
	if cipher.Compressed {
		wireOffer |= OfferCompressed
	}
	attrs := buildSessionUpdateAttrs(sessionID, wireOffer, nonce, cipher, expiration)
	code, _, err := m.sig.SendIQ(ctx, signaling.SessionUpdate, attrs)
	s.transition(Accepted, Updating)
	return code, err
}

// SendTransportInfo emits a (possibly chained) batch of ICE
// candidates. Best-effort: never retried (spec §4.8).
func (m *Manager) SendTransportInfo(ctx context.Context, sessionID uuid.UUID, batches [][]sdp.Candidate) error {
	s := m.get(sessionID)
	if s == nil {
		return ErrSessionNotFound
	}
	frames := make([]chainFrame, len(batches))
	for i, b := range batches {
		frames[i] = chainFrame{Candidates: b}
	}
	attrs, err := buildTransportInfoAttrs(sessionID, frames)
	if err != nil {
		return err
	}
	_, _, err = m.sig.SendIQ(ctx, signaling.TransportInfo, attrs)
	return err
}

// Terminate closes sessionID locally and notifies the peer with
// reason. Inbound terminates received from the peer instead go
// through handleInboundTerminate, which closes without re-notifying.
func (m *Manager) Terminate(ctx context.Context, sessionID uuid.UUID, reason Reason) (twinerr.Code, error) {
	s := m.get(sessionID)
	if s == nil {
		return twinerr.ITEM_NOT_FOUND, ErrSessionNotFound
	}
	s.transition(Terminating, Initiated, Ringing, Accepted, Updating)
	attrs := buildSessionTerminateAttrs(sessionID, reason)
	code, _, err := m.sig.SendIQ(ctx, signaling.SessionTerminate, attrs)
	m.closeLocally(s, reason)
	return code, err
}

func (m *Manager) closeLocally(s *Session, reason Reason) {
	s.transition(Closed, Initiated, Ringing, Accepted, Updating, Terminating)
	if kp := s.KeyPair(); kp != nil {
		kp.Dispose()
	}
	m.remove(s.ID)
	m.observer.OnSessionTerminate(s.ID, reason)
}
