package callroom

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/internal/config"
	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/wire"
)

// loopbackConn wires one Signaling's outbound Send directly into a
// peer's HandleInbound, mirroring pkg/signaling's own in-memory test
// pair so callroom can be exercised without a real transport.
type loopbackConn struct {
	peer *signaling.Signaling
}

func (c *loopbackConn) Send(ctx context.Context, data []byte) error {
	go c.peer.HandleInbound(ctx, data)
	return nil
}

// serverStub answers CreateCallRoom/JoinCallRoom/LeaveCallRoom/
// DestroyCallRoom requests with a canned ack, standing in for the
// broker-side CallRoomSM this package's Manager is a client of.
type serverStub struct {
	sig *signaling.Signaling
}

func newServerStub() *serverStub {
	s := &serverStub{sig: signaling.New(nil, config.SessionParams{}.WithDefaults(), false, nil)}
	s.sig.RegisterHandler(signaling.CreateCallRoom, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, []wire.Attribute{
			wire.UUIDAttr(attrRoomID, uuid.New()),
			wire.UUIDAttr(attrMemberID, uuid.New()),
		}
	})
	s.sig.RegisterHandler(signaling.JoinCallRoom, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, []wire.Attribute{wire.UUIDAttr(attrMemberID, uuid.New())}
	})
	s.sig.RegisterHandler(signaling.LeaveCallRoom, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, nil
	})
	s.sig.RegisterHandler(signaling.DestroyCallRoom, func(requestID uint64, attrs []wire.Attribute) (twinerr.Code, []wire.Attribute) {
		return twinerr.SUCCESS, nil
	})
	return s
}

func newClientAndServer() (*signaling.Signaling, *serverStub) {
	server := newServerStub()
	client := signaling.New(nil, config.SessionParams{}.WithDefaults(), false, nil)
	client.SetConnection(&loopbackConn{peer: server.sig})
	server.sig.SetConnection(&loopbackConn{peer: client})
	return client, server
}

func TestCreateThenDestroyLifecycle(t *testing.T) {
	owner := uuid.New()
	sig, _ := newClientAndServer()
	mgr := New(owner, sig, NoopObserver{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	room, code, err := mgr.Create(ctx, 0, 16, false)
	if err != nil || code != twinerr.SUCCESS {
		t.Fatalf("Create: code %v, err %v", code, err)
	}
	if !room.IsOwner() {
		t.Fatal("creator must be the owner")
	}

	destroyCode, err := mgr.Destroy(ctx, room.ID)
	if err != nil || destroyCode != twinerr.SUCCESS {
		t.Fatalf("Destroy: code %v, err %v", destroyCode, err)
	}
	if mgr.get(room.ID) != nil {
		t.Fatal("room must be untracked after destroy")
	}
}

func TestDestroyRejectedForNonOwner(t *testing.T) {
	owner := uuid.New()
	sig, _ := newClientAndServer()
	mgr := New(owner, sig, NoopObserver{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	room, code, err := mgr.Create(ctx, 0, 16, false)
	if err != nil || code != twinerr.SUCCESS {
		t.Fatalf("Create: code %v, err %v", code, err)
	}
	// Force the local view to believe someone else owns it, as a join
	// flow would populate.
	room.Owner = uuid.New()

	if _, err := mgr.Destroy(ctx, room.ID); err != ErrNotOwner {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
}

func TestInviteTracksInvitedRoom(t *testing.T) {
	owner := uuid.New()
	invitee := uuid.New()
	sig, _ := newClientAndServer()

	obs := &recordingObserver{joined: make(chan Member, 1), left: make(chan uuid.UUID, 1)}
	mgr := New(invitee, sig, obs, nil)

	roomID := uuid.New()
	mgr.onInvite(signaling.Event{
		Method:     signaling.InviteCallRoom,
		Attributes: buildInviteAttrs(roomID, owner, 0, 16),
	})

	r := mgr.get(roomID)
	if r == nil {
		t.Fatal("expected Manager to track the invited room")
	}
	if r.Owner != owner {
		t.Fatalf("got owner %v, want %v", r.Owner, owner)
	}
	if r.IsOwner() {
		t.Fatal("invitee must not be the owner")
	}
}

type recordingObserver struct {
	NoopObserver
	joined chan Member
	left   chan uuid.UUID
}

func (o *recordingObserver) OnMemberJoined(roomID uuid.UUID, m Member, needsSession bool) {
	o.joined <- m
}
func (o *recordingObserver) OnMemberLeft(roomID, memberID, priorSession uuid.UUID) {
	o.left <- priorSession
}

func TestMemberNotificationTieBreakTerminatesPriorSession(t *testing.T) {
	owner := uuid.New()
	sig, _ := newClientAndServer()
	obs := &recordingObserver{joined: make(chan Member, 4), left: make(chan uuid.UUID, 4)}
	mgr := New(owner, sig, obs, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	room, code, err := mgr.Create(ctx, 0, 16, false)
	if err != nil || code != twinerr.SUCCESS {
		t.Fatalf("Create: code %v, err %v", code, err)
	}

	memberID := uuid.New()
	firstSession := uuid.New()

	// First join: member has no prior session yet.
	mgr.onMemberNotification(signaling.Event{
		Method:     signaling.MemberNotification,
		Attributes: buildMemberNotificationAttrsForTest(room.ID, memberID, uuid.New(), NotifyNewMemberNeedSession),
	})
	first := <-obs.joined
	if first.ID != memberID {
		t.Fatalf("got member %v, want %v", first.ID, memberID)
	}
	mgr.NoteSession(room.ID, memberID, firstSession)

	// Second join for the same member id: spec §4.7 tie-break — the
	// earlier session must be reported for termination with MERGE.
	mgr.onMemberNotification(signaling.Event{
		Method:     signaling.MemberNotification,
		Attributes: buildMemberNotificationAttrsForTest(room.ID, memberID, uuid.New(), NotifyNewMemberNeedSession),
	})

	select {
	case prior := <-obs.left:
		if prior != firstSession {
			t.Fatalf("got terminated session %v, want %v", prior, firstSession)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a tie-break OnMemberLeft for the replaced session")
	}
	<-obs.joined
}

func buildMemberNotificationAttrsForTest(roomID, memberID, peer uuid.UUID, reason NotifyReason) []wire.Attribute {
	return []wire.Attribute{
		wire.UUIDAttr(attrRoomID, roomID),
		wire.UUIDAttr(attrMemberID, memberID),
		wire.UUIDAttr(attrPeer, peer),
		wire.LongAttr(attrReason, int64(reason)),
	}
}
