package p2psession

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

// Attribute names used across the P2P session IQ catalogue (spec
// §4.6, §6). Kept unexported: these are a wire implementation detail
// of this package, not a public contract.
const (
	attrSessionID     = "sessionId"
	attrFrom          = "from"
	attrTo            = "to"
	attrDevice        = "device"
	attrOffer         = "offer"
	attrSdp           = "sdp"
	attrExpiration    = "expiration"
	attrMajorVersion  = "majorVersion"
	attrMinorVersion  = "minorVersion"
	attrReason        = "reason"
	attrMode          = "mode"
	attrCandidates    = "candidates"
	attrNext          = "next"
	attrNonceSeq      = "nonceSeq"
)

// hasNextMarker is the bit inside a transport-info frame's mode field
// that signals a chained (mode, sdp) pair follows (spec §4.8).
const hasNextMarker = 1 << 31

func encodeSdpAttr(body sdp.Sdp) wire.Attribute {
	return wire.StringAttr(attrSdp, base64.RawURLEncoding.EncodeToString(body.Body))
}

func decodeSdpAttr(attrs []wire.Attribute, compressed bool, keyIndex int) (sdp.Sdp, error) {
	a, ok := wire.Find(attrs, attrSdp)
	if !ok || a.Tag != wire.TagString {
		return sdp.Sdp{}, twinerr.New(twinerr.BAD_FORMAT)
	}
	body, err := base64.RawURLEncoding.DecodeString(a.Str)
	if err != nil {
		return sdp.Sdp{}, twinerr.Wrap(twinerr.BAD_FORMAT, err)
	}
	return sdp.Sdp{Body: body, Compressed: compressed, KeyIndex: keyIndex}, nil
}

// buildSessionInitiateAttrs serializes a session-initiate IQ body.
func buildSessionInitiateAttrs(sessionID, from, to uuid.UUID, offer Offer, nonceSeq uint64, body sdp.Sdp, expiration time.Time, major, minor int) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.UUIDAttr(attrFrom, from),
		wire.UUIDAttr(attrTo, to),
		wire.LongAttr(attrOffer, int64(offer)),
		wire.LongAttr(attrNonceSeq, int64(nonceSeq)),
		encodeSdpAttr(body),
		wire.LongAttr(attrExpiration, expiration.UnixMilli()),
		wire.LongAttr(attrMajorVersion, int64(major)),
		wire.LongAttr(attrMinorVersion, int64(minor)),
	}
}

// buildSessionAcceptAttrs serializes a session-accept IQ body.
func buildSessionAcceptAttrs(sessionID uuid.UUID, offer Offer, nonceSeq uint64, body sdp.Sdp, expiration time.Time) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.LongAttr(attrOffer, int64(offer)),
		wire.LongAttr(attrNonceSeq, int64(nonceSeq)),
		encodeSdpAttr(body),
		wire.LongAttr(attrExpiration, expiration.UnixMilli()),
	}
}

// buildSessionUpdateAttrs serializes a session-update IQ body.
func buildSessionUpdateAttrs(sessionID uuid.UUID, offer Offer, nonceSeq uint64, body sdp.Sdp, expiration time.Time) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.LongAttr(attrOffer, int64(offer)|int64(OfferAnswer)),
		wire.LongAttr(attrNonceSeq, int64(nonceSeq)),
		encodeSdpAttr(body),
		wire.LongAttr(attrExpiration, expiration.UnixMilli()),
	}
}

// buildSessionTerminateAttrs serializes a session-terminate IQ body.
func buildSessionTerminateAttrs(sessionID uuid.UUID, reason Reason) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.LongAttr(attrReason, int64(reason)),
	}
}

// buildSessionPingAttrs serializes a session-ping IQ body.
func buildSessionPingAttrs(sessionID uuid.UUID, expiration time.Time) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.LongAttr(attrExpiration, expiration.UnixMilli()),
	}
}

// buildDeviceRingingAttrs serializes a device-ringing hint body.
func buildDeviceRingingAttrs(sessionID, device uuid.UUID) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrSessionID, sessionID),
		wire.UUIDAttr(attrDevice, device),
	}
}

// chainFrame is one decoded (mode, candidates) pair from a (possibly
// chained) transport-info packet.
type chainFrame struct {
	Mode       int64
	Candidates []sdp.Candidate
}

// buildTransportInfoAttrs serializes a (possibly chained)
// transport-info IQ body. frames must be non-empty.
func buildTransportInfoAttrs(sessionID uuid.UUID, frames []chainFrame) ([]wire.Attribute, error) {
	if len(frames) == 0 {
		return nil, twinerr.New(twinerr.BAD_FORMAT)
	}
	attrs := []wire.Attribute{wire.UUIDAttr(attrSessionID, sessionID)}
	head, err := buildChainAttrs(frames)
	if err != nil {
		return nil, err
	}
	return append(attrs, head...), nil
}

func buildChainAttrs(frames []chainFrame) ([]wire.Attribute, error) {
	f := frames[0]
	mode := f.Mode
	rest := frames[1:]
	if len(rest) > 0 {
		mode |= hasNextMarker
	}
	attrs := []wire.Attribute{
		wire.LongAttr(attrMode, mode),
		wire.StringAttr(attrCandidates, sdp.EncodeCandidates(f.Candidates)),
	}
	if len(rest) > 0 {
		next, err := buildChainAttrs(rest)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, wire.ListAttr(attrNext, next))
	}
	return attrs, nil
}

// decodeTransportInfoChain walks a (possibly chained) transport-info
// body, returning one chainFrame per (mode, candidates) pair in wire
// order. A HAS_NEXT_MARKER bit with no following "next" frame, or one
// whose candidates decode to nothing, is BAD_ENCRYPTION_FORMAT per
// spec §9's resolved open question.
func decodeTransportInfoChain(attrs []wire.Attribute) ([]chainFrame, error) {
	var frames []chainFrame
	cur := attrs
	chained := false
	for {
		modeAttr, ok := wire.Find(cur, attrMode)
		if !ok || modeAttr.Tag != wire.TagLong {
			return nil, twinerr.New(twinerr.BAD_FORMAT)
		}
		candAttr, ok := wire.Find(cur, attrCandidates)
		if !ok || candAttr.Tag != wire.TagString {
			return nil, twinerr.New(twinerr.BAD_FORMAT)
		}
		candidates, err := sdp.DecodeCandidates(candAttr.Str)
		if err != nil {
			return nil, err
		}
		hasNext := modeAttr.Long&hasNextMarker != 0
		if (hasNext || chained) && len(candidates) == 0 && candAttr.Str == "" {
			return nil, twinerr.New(twinerr.BAD_ENCRYPTION_FORMAT)
		}
		frames = append(frames, chainFrame{Mode: modeAttr.Long &^ hasNextMarker, Candidates: candidates})

		if !hasNext {
			return frames, nil
		}
		nextAttr, ok := wire.Find(cur, attrNext)
		if !ok || nextAttr.Tag != wire.TagList || len(nextAttr.List) == 0 {
			return nil, twinerr.New(twinerr.BAD_ENCRYPTION_FORMAT)
		}
		cur = nextAttr.List
		chained = true
	}
}
