package p2psession

import (
	"testing"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/sdp"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

func TestTransportInfoChainRoundTrip(t *testing.T) {
	frames := []chainFrame{
		{Mode: 1, Candidates: []sdp.Candidate{{Mid: "0", Index: 0, Line: "candidate:1 1 udp 2130706431 10.0.0.1 4000 typ host"}}},
		{Mode: 2, Candidates: []sdp.Candidate{{Mid: "0", Index: 1, Line: "candidate:2 1 udp 2130706431 10.0.0.2 4001 typ srflx"}}},
	}

	attrs, err := buildTransportInfoAttrs(uuid.New(), frames)
	if err != nil {
		t.Fatalf("buildTransportInfoAttrs: %v", err)
	}

	got, err := decodeTransportInfoChain(attrs)
	if err != nil {
		t.Fatalf("decodeTransportInfoChain: %v", err)
	}
	if len(got) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(got), len(frames))
	}
	for i, f := range frames {
		if got[i].Mode != f.Mode {
			t.Fatalf("frame %d: got mode %d, want %d", i, got[i].Mode, f.Mode)
		}
		if len(got[i].Candidates) != 1 || got[i].Candidates[0].Line != f.Candidates[0].Line {
			t.Fatalf("frame %d: got candidates %+v, want %+v", i, got[i].Candidates, f.Candidates)
		}
	}
}

func TestTransportInfoChainRejectsEmptyNestedFrame(t *testing.T) {
	// spec §9's resolved open question: HAS_NEXT_MARKER set with an
	// empty inner frame is BAD_ENCRYPTION_FORMAT, not a truncated but
	// otherwise valid single-frame packet.
	attrs := []wire.Attribute{
		wire.LongAttr(attrMode, int64(1)|hasNextMarker),
		wire.StringAttr(attrCandidates, sdp.EncodeCandidates(nil)),
		wire.ListAttr(attrNext, nil),
	}
	_, err := decodeTransportInfoChain(attrs)
	if twinerr.CodeOf(err) != twinerr.BAD_ENCRYPTION_FORMAT {
		t.Fatalf("got %v, want BAD_ENCRYPTION_FORMAT", err)
	}
}

func TestTransportInfoChainRejectsMarkerWithNoNextAttribute(t *testing.T) {
	attrs := []wire.Attribute{
		wire.LongAttr(attrMode, int64(1)|hasNextMarker),
		wire.StringAttr(attrCandidates, sdp.EncodeCandidates([]sdp.Candidate{{Mid: "0", Line: "candidate:1 1 udp 1 10.0.0.1 1 typ host"}})),
	}
	_, err := decodeTransportInfoChain(attrs)
	if twinerr.CodeOf(err) != twinerr.BAD_ENCRYPTION_FORMAT {
		t.Fatalf("got %v, want BAD_ENCRYPTION_FORMAT", err)
	}
}

func TestBuildTransportInfoAttrsRejectsEmptyFrameList(t *testing.T) {
	_, err := buildTransportInfoAttrs(uuid.New(), nil)
	if twinerr.CodeOf(err) != twinerr.BAD_FORMAT {
		t.Fatalf("got %v, want BAD_FORMAT", err)
	}
}
