package callroom

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/signaling"
	"github.com/twinlife/twincall/pkg/twinerr"
	"github.com/twinlife/twincall/pkg/twinlog"
)

// Manager is the CallRoomSM component of spec §4.7: it tracks every
// Room the local twincode owns or has joined, emits the call-room IQ
// catalogue through a signaling.Signaling, and drives each Room's
// state machine from inbound pushes.
type Manager struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room

	// lastNotice de-duplicates MemberNotification pushes (spec §8
	// property 5): a retransmitted notice identical to the last one
	// seen for its (room, member) yields no further observer call.
	lastNotice map[noticeKey]memberNotice

	local uuid.UUID
	sig   *signaling.Signaling

	observer Observer
	log      twinlog.Logger
}

type noticeKey struct {
	Room   uuid.UUID
	Member uuid.UUID
}

// New constructs a Manager bound to local's own twincode identity and
// registers its push handlers on sig. factory may be nil to disable
// logging.
func New(local uuid.UUID, sig *signaling.Signaling, observer Observer, factory twinlog.Factory) *Manager {
	if observer == nil {
		observer = NoopObserver{}
	}
	m := &Manager{
		rooms:      make(map[uuid.UUID]*Room),
		lastNotice: make(map[noticeKey]memberNotice),
		local:      local,
		sig:        sig,
		observer:   observer,
		log:        twinlog.Scoped(factory, "callroom"),
	}
	sig.Observe(m.onPush)
	return m
}

func (m *Manager) onPush(ev signaling.Event) {
	switch ev.Method {
	case signaling.InviteCallRoom:
		m.onInvite(ev)
	case signaling.MemberNotification:
		m.onMemberNotification(ev)
	}
}

func (m *Manager) onInvite(ev signaling.Event) {
	notice, ok := decodeInviteAttrs(ev.Attributes)
	if !ok {
		return
	}
	r := newRoom(notice.RoomID, notice.Owner, m.local, notice.ModeBits, notice.MaxMembers, false, stateInvited)
	m.mu.Lock()
	if _, exists := m.rooms[notice.RoomID]; !exists {
		m.rooms[notice.RoomID] = r
	}
	m.mu.Unlock()
	m.observer.OnInvited(notice.RoomID, notice.Owner, notice.ModeBits, notice.MaxMembers)
}

func (m *Manager) onMemberNotification(ev signaling.Event) {
	notice, ok := decodeMemberNotificationAttrs(ev.Attributes)
	if !ok {
		return
	}
	r := m.get(notice.RoomID)
	if r == nil {
		return
	}

	key := noticeKey{Room: notice.RoomID, Member: notice.MemberID}
	m.mu.Lock()
	if last, ok := m.lastNotice[key]; ok && last == notice {
		m.mu.Unlock()
		return
	}
	m.lastNotice[key] = notice
	m.mu.Unlock()

	switch notice.Reason {
	case NotifyNewMember, NotifyNewMemberNeedSession:
		status := MemberNeedsSession
		if notice.Reason == NotifyNewMember {
			status = MemberConnected
		}
		prior, current := r.setMember(notice.MemberID, notice.Peer, status)
		if prior != nil && prior.P2PSessionID != (uuid.UUID{}) {
			// spec §4.7 tie-break: a repeated join replaces the
			// earlier roster entry and its session is terminated
			// with MERGE by whoever owns the p2psession.Manager.
			m.observer.OnMemberLeft(notice.RoomID, notice.MemberID, prior.P2PSessionID)
		}
		m.observer.OnMemberJoined(notice.RoomID, current, status == MemberNeedsSession)

	case NotifyDelMember:
		removed := r.deleteMember(notice.MemberID)
		var sessionID uuid.UUID
		if removed != nil {
			sessionID = removed.P2PSessionID
		}
		if notice.MemberID == r.LocalMemberID {
			r.destroy()
			m.remove(notice.RoomID)
			m.observer.OnRoomDestroyed(notice.RoomID)
		}
		m.observer.OnMemberLeft(notice.RoomID, notice.MemberID, sessionID)
	}
}

func (m *Manager) get(id uuid.UUID) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id]
}

func (m *Manager) remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
}

// Create asks the server to create a new room owned by the local
// twincode.
func (m *Manager) Create(ctx context.Context, modeBits uint32, maxMembers int, autoDestroy bool) (*Room, twinerr.Code, error) {
	attrs := buildCreateAttrs(m.local, modeBits, maxMembers)
	code, reply, err := m.sig.SendIQ(ctx, signaling.CreateCallRoom, attrs)
	if err != nil || !code.IsSuccess() {
		return nil, code, err
	}
	roomID, ok1 := getUUID(reply, attrRoomID)
	memberID, ok2 := getUUID(reply, attrMemberID)
	if !ok1 || !ok2 {
		return nil, twinerr.BAD_FORMAT, twinerr.New(twinerr.BAD_FORMAT)
	}

	r := newRoom(roomID, m.local, m.local, modeBits, maxMembers, autoDestroy, stateOwned)
	r.setLocalMemberID(memberID)
	m.mu.Lock()
	m.rooms[roomID] = r
	m.mu.Unlock()
	return r, twinerr.SUCCESS, nil
}

// Invite notifies peer of roomID directly; spec §4.7 models invite as
// a server push delivered to the invitee rather than a request/reply
// IQ, so this is fire-and-forget (owner-only).
func (m *Manager) Invite(ctx context.Context, roomID, peer uuid.UUID) error {
	r := m.get(roomID)
	if r == nil {
		return ErrRoomNotFound
	}
	if !r.IsOwner() {
		return ErrNotOwner
	}
	attrs := buildInviteAttrs(roomID, m.local, r.ModeBits, r.MaxMembers)
	return m.sig.SendNotify(ctx, signaling.InviteCallRoom, attrs)
}

// Join accepts a pending invitation to roomID.
func (m *Manager) Join(ctx context.Context, roomID uuid.UUID) (*Room, twinerr.Code, error) {
	r := m.get(roomID)
	if r == nil {
		return nil, twinerr.ITEM_NOT_FOUND, ErrRoomNotFound
	}
	attrs := buildJoinAttrs(roomID, m.local)
	code, reply, err := m.sig.SendIQ(ctx, signaling.JoinCallRoom, attrs)
	if err != nil || !code.IsSuccess() {
		return nil, code, err
	}
	memberID, ok := getUUID(reply, attrMemberID)
	if !ok {
		return nil, twinerr.BAD_FORMAT, twinerr.New(twinerr.BAD_FORMAT)
	}
	r.setLocalMemberID(memberID)
	_, _ = r.setMember(memberID, m.local, MemberConnected)
	return r, twinerr.SUCCESS, nil
}

// Leave departs memberID's room. Leaving with the local member id
// releases the room entirely.
func (m *Manager) Leave(ctx context.Context, roomID, memberID uuid.UUID) (twinerr.Code, error) {
	r := m.get(roomID)
	if r == nil {
		return twinerr.ITEM_NOT_FOUND, ErrRoomNotFound
	}
	attrs := buildLeaveAttrs(roomID, memberID)
	code, _, err := m.sig.SendIQ(ctx, signaling.LeaveCallRoom, attrs)
	if err != nil || !code.IsSuccess() {
		return code, err
	}
	r.deleteMember(memberID)
	if memberID == r.LocalMemberID {
		r.destroy()
		m.remove(roomID)
	}
	return twinerr.SUCCESS, nil
}

// Destroy tears down roomID, which only its owner may do.
func (m *Manager) Destroy(ctx context.Context, roomID uuid.UUID) (twinerr.Code, error) {
	r := m.get(roomID)
	if r == nil {
		return twinerr.ITEM_NOT_FOUND, ErrRoomNotFound
	}
	if !r.IsOwner() {
		return twinerr.NOT_AUTHORIZED, ErrNotOwner
	}
	attrs := buildDestroyAttrs(roomID)
	code, _, err := m.sig.SendIQ(ctx, signaling.DestroyCallRoom, attrs)
	if err != nil || !code.IsSuccess() {
		return code, err
	}
	r.destroy()
	m.remove(roomID)
	m.observer.OnRoomDestroyed(roomID)
	return twinerr.SUCCESS, nil
}

// NoteSession records that a P2P session was established toward
// memberID of roomID, so a subsequent double-join tie-break can
// terminate it (spec §4.7).
func (m *Manager) NoteSession(roomID, memberID, sessionID uuid.UUID) {
	if r := m.get(roomID); r != nil {
		r.setMemberSession(memberID, sessionID)
	}
}
