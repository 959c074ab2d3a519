package p2psession

import (
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

func getUUID(attrs []wire.Attribute, name string) (uuid.UUID, bool) {
	a, ok := wire.Find(attrs, name)
	if !ok || a.Tag != wire.TagUUID {
		return uuid.UUID{}, false
	}
	return a.UUID, true
}

func getLong(attrs []wire.Attribute, name string) (int64, bool) {
	a, ok := wire.Find(attrs, name)
	if !ok || a.Tag != wire.TagLong {
		return 0, false
	}
	return a.Long, true
}

// handleInboundInitiate services an inbound SessionInitiate: the
// local twincode is the callee.
func (m *Manager) handleInboundInitiate(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	from, ok2 := getUUID(attrs, attrFrom)
	to, ok3 := getUUID(attrs, attrTo)
	offerVal, ok4 := getLong(attrs, attrOffer)
	nonceSeq, ok5 := getLong(attrs, attrNonceSeq)
	expMs, ok6 := getLong(attrs, attrExpiration)
	if !ok || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return twinerr.BAD_FORMAT, nil
	}
	expiration := time.UnixMilli(expMs)
	if time.Now().After(expiration) {
		return twinerr.EXPIRED, nil
	}

	if existing := m.get(sessionID); existing != nil {
		return twinerr.SUCCESS, nil // idempotent re-delivery
	}

	offer := Offer(offerVal)
	kp, err := m.store.BuildSessionKeyPair(sessionID, to, from, m.secret.SecretRenewDelay, m.secret.NonceLeaseSize, sessionID[:])
	if err != nil {
		return twinerr.CodeOf(err), nil
	}

	compressed, keyIndex := offer.Has(OfferCompressed), offer.KeyIndex()
	cipher, err := decodeSdpAttr(attrs, compressed, keyIndex)
	if err != nil {
		return twinerr.CodeOf(err), nil
	}
	code, plain := kp.Decrypt(uint64(nonceSeq), sessionID, cipher)
	if !code.IsSuccess() {
		return code, nil
	}
	sdpText, err := sdp.Decompress(*plain)
	if err != nil {
		return twinerr.CodeOf(err), nil
	}

	s := NewSession(sessionID, to, Endpoint{Twincode: from}, DecodeMediaOffer(offer), expiration, kp)
	m.put(s)
	m.observer.OnSessionInitiate(sessionID, from, s.Offer, sdpText)
	return twinerr.SUCCESS, nil
}

func (m *Manager) handleInboundAccept(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	offerVal, ok2 := getLong(attrs, attrOffer)
	nonceSeq, ok3 := getLong(attrs, attrNonceSeq)
	if !ok || !ok2 || !ok3 {
		return twinerr.BAD_FORMAT, nil
	}

	s := m.get(sessionID)
	if s == nil {
		return twinerr.ITEM_NOT_FOUND, nil
	}
	if err := s.transition(Accepted, Initiated, Ringing); err != nil {
		return twinerr.ITEM_NOT_FOUND, nil
	}
	s.touch(time.Now())

	offer := Offer(offerVal)
	cipher, err := decodeSdpAttr(attrs, offer.Has(OfferCompressed), offer.KeyIndex())
	if err != nil {
		return twinerr.CodeOf(err), nil
	}
	code, plain := s.KeyPair().Decrypt(uint64(nonceSeq), sessionID, cipher)
	if !code.IsSuccess() {
		return code, nil
	}
	answer, err := sdp.Decompress(*plain)
	if err != nil {
		return twinerr.CodeOf(err), nil
	}
	m.observer.OnSessionAccept(sessionID, answer)
	return twinerr.SUCCESS, nil
}

func (m *Manager) handleInboundUpdate(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	offerVal, ok2 := getLong(attrs, attrOffer)
	nonceSeq, ok3 := getLong(attrs, attrNonceSeq)
	if !ok || !ok2 || !ok3 {
		return twinerr.BAD_FORMAT, nil
	}

	s := m.get(sessionID)
	if s == nil {
		return twinerr.ITEM_NOT_FOUND, nil
	}
	if err := s.transition(Updating, Accepted); err != nil {
		return twinerr.ITEM_NOT_FOUND, nil
	}
	s.touch(time.Now())

	offer := Offer(offerVal)
	cipher, err := decodeSdpAttr(attrs, offer.Has(OfferCompressed), offer.KeyIndex())
	if err != nil {
		s.transition(Accepted, Updating)
		return twinerr.CodeOf(err), nil
	}
	code, plain := s.KeyPair().Decrypt(uint64(nonceSeq), sessionID, cipher)
	if !code.IsSuccess() {
		s.transition(Accepted, Updating)
		return code, nil
	}
	sdpText, err := sdp.Decompress(*plain)
	s.transition(Accepted, Updating)
	if err != nil {
		return twinerr.CodeOf(err), nil
	}
	m.observer.OnSessionUpdate(sessionID, DecodeMediaOffer(offer), sdpText)
	return twinerr.SUCCESS, nil
}

func (m *Manager) handleInboundTransportInfo(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	if !ok {
		return twinerr.BAD_FORMAT, nil
	}
	s := m.get(sessionID)
	if s == nil || s.State().IsTerminal() {
		return twinerr.ITEM_NOT_FOUND, nil
	}
	s.touch(time.Now())

	frames, err := decodeTransportInfoChain(attrs)
	if err != nil {
		return twinerr.CodeOf(err), nil
	}
	code := twinerr.SUCCESS
	for _, f := range frames {
		code = m.observer.OnTransportInfo(sessionID, f.Candidates)
		if !code.IsSuccess() {
			break
		}
	}
	return code, nil
}

func (m *Manager) handleInboundTerminate(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	reasonVal, ok2 := getLong(attrs, attrReason)
	if !ok || !ok2 {
		return twinerr.BAD_FORMAT, nil
	}
	s := m.get(sessionID)
	if s == nil {
		return twinerr.SUCCESS, nil // idempotent: already closed
	}
	m.closeLocally(s, Reason(reasonVal))
	return twinerr.SUCCESS, nil
}

func (m *Manager) handleInboundPing(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
	sessionID, ok := getUUID(attrs, attrSessionID)
	if !ok {
		return twinerr.BAD_FORMAT, nil
	}
	s := m.get(sessionID)
	if s == nil {
		return twinerr.EXPIRED, nil
	}
	if s.Expired(time.Now()) {
		m.closeLocally(s, ReasonTimeout)
		return twinerr.EXPIRED, nil
	}
	s.touch(time.Now())
	return twinerr.SUCCESS, nil
}
